// deployrev-completions writes shell completion scripts for packaging.
// Usage: deployrev-completions <output-dir>
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/deployrev/cmd/deployrev"
)

// scripts maps each supported shell to the file name its loader expects
var scripts = []struct {
	shell string
	file  string
}{
	{"bash", "deployrev.bash"},
	{"zsh", "_deployrev"},
	{"fish", "deployrev.fish"},
	{"powershell", "deployrev.ps1"},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output-dir>\n", os.Args[0])
		os.Exit(1)
	}
	dir := os.Args[1]

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}
	for _, s := range scripts {
		path := filepath.Join(dir, s.file)
		if err := write(s.shell, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s completion: %v\n", s.shell, err)
			os.Exit(1)
		}
		fmt.Println(path)
	}
}

// write runs the completion command for shell with its output going to path
func write(shell, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	rootCmd := deployrev.NewRootCmd()
	rootCmd.SetOut(f)
	rootCmd.SetArgs([]string{"completion", shell})
	return rootCmd.Execute()
}
