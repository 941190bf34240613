package main

import (
	"errors"

	"github.com/spf13/cobra"

	"ingest-mapper/internal/app"
)

func newRunCmd(cfg *app.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run MANIFEST INPUT",
		Short: "Map an input file and stream entity records to stdout",
		Long: "Map an input file and stream one record per root entity to stdout.\n" +
			"INPUT may be CSV or JSON lines, optionally gzip or zstd compressed; use - for stdin.\n" +
			"Rejected groups are written to the error report as JSON lines.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ManifestPath = args[0]
			cfg.InputPath = args[1]

			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}

			summary, err := a.Run(cmd.Context())
			if errors.Is(err, app.ErrGroupsRejected) {
				return &ExitError{Code: 2, Message: err.Error()}
			}

			if err != nil {
				return err
			}

			a.Logger().Info("Done", "records", summary.Records, "groups", summary.Groups)

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.InputFormat, "input-format", cfg.InputFormat, "input format: csv or jsonl (default: from file name)")
	f.StringVarP(&cfg.OutputFormat, "output-format", "o", cfg.OutputFormat, "output format: json or msgpack")
	f.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "write the error report to this file instead of stderr")
	f.BoolVar(&cfg.FailFast, "fail-fast", cfg.FailFast, "stop at the first rejected group")
	f.IntVar(&cfg.JSONCacheSize, "json-cache-size", cfg.JSONCacheSize, "parsed JSON documents kept per run (0 disables)")

	return cmd
}
