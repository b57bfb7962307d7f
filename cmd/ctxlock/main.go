package main

import (
	"fmt"
	"os"

	"github.com/roach88/ctxlock/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands that already reported through their formatter
		// return a bare exit code with no message.
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
