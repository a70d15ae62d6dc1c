package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/deployrev/cmd/deployrev"
	"github.com/arthur-debert/deployrev/internal/version"
)

func main() {
	rootCmd := deployrev.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DEPLOYREV",
		Section: "1",
		Source:  "deployrev " + version.Short(),
		Manual:  "deployrev manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
