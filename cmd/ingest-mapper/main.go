// Package main provides the CLI entrypoint for ingest-mapper.
//
// ingest-mapper maps raw tabular rows to typed entity graphs as directed by
// a YAML manifest:
//   - validate checks a manifest and prints every diagnostic
//   - run streams an input file through a manifest
//   - inspect dumps the parsed manifest
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"ingest-mapper/internal/app"
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}

			os.Exit(exitErr.Code)
		}

		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(outW, errW io.Writer, args []string) error {
	if err := app.LoadDotEnv(); err != nil {
		return err
	}

	defaults, err := app.EnvConfig(nil)
	if err != nil {
		return err
	}

	root := newRootCmd(outW, errW, defaults)
	root.SetArgs(args)

	return root.Execute()
}
