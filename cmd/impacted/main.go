package main

import (
	"fmt"
	"os"

	"github.com/mrbonezy/impacted/exitcode"
)

func main() {
	if err := run(os.Args); err != nil {
		if !exitcode.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitcode.Get(err))
	}
}

func run(args []string) error {
	cmd := newRootCommand(args)
	return cmd.Execute()
}
