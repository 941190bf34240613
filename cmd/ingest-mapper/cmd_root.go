package main

import (
	"io"

	"github.com/spf13/cobra"

	"ingest-mapper/internal/app"
)

const appName = "ingest-mapper"

// newRootCmd builds the command tree. Flag defaults come from defaults,
// which already hold the environment overrides.
func newRootCmd(outW, errW io.Writer, defaults app.Config) *cobra.Command {
	cfg := defaults

	root := &cobra.Command{
		Use:   appName,
		Short: "Map raw tabular rows to typed entity graphs",
		Long: appName + " maps raw tabular rows to typed entity graphs as directed by a YAML manifest.\n\n" +
			"Flag defaults can be set with INGEST_* environment variables or a .env file.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetOut(outW)
	root.SetErr(errW)

	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")

	root.AddCommand(
		newValidateCmd(&cfg),
		newRunCmd(&cfg),
		newInspectCmd(&cfg),
	)

	return root
}

// newApp validates cfg and creates the App for a command.
func newApp(cmd *cobra.Command, cfg *app.Config) (*app.App, error) {
	c, err := app.NewConfig(*cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}

	return app.New(c, cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
}
