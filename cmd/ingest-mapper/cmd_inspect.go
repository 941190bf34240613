package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"ingest-mapper/internal/app"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func newInspectCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect MANIFEST",
		Short: "Dump the parsed manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ManifestPath = args[0]

			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}

			m, err := a.Load()
			if err != nil {
				return err
			}

			dumper.Fdump(cmd.OutOrStdout(), m)

			return nil
		},
	}
}
