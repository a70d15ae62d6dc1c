package main

import (
	"os"

	"github.com/arthur-debert/deployrev/cmd/deployrev"
)

func main() {
	os.Exit(deployrev.Execute())
}
