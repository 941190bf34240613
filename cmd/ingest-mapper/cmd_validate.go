package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ingest-mapper/internal/app"
)

func newValidateCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate MANIFEST",
		Short: "Check a manifest and print every diagnostic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ManifestPath = args[0]

			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}

			_, diags, err := a.Check()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for _, d := range diags.Warnings {
				fmt.Fprintf(out, "warning: %s: %s\n", d.Path, d)
			}

			for _, d := range diags.Errors {
				fmt.Fprintf(out, "error: %s: %s\n", d.Path, d)
			}

			if diags.HasErrors() {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%s: %d error(s)", args[0], len(diags.Errors))}
			}

			fmt.Fprintf(out, "%s: ok\n", args[0])

			return nil
		},
	}
}
