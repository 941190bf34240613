package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ingest-mapper/internal/build"
	"ingest-mapper/internal/custom"
	"ingest-mapper/internal/diagnostic"
	"ingest-mapper/internal/driver"
	"ingest-mapper/internal/entity"
	"ingest-mapper/internal/eval"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
	"ingest-mapper/internal/rowsource"
)

// ErrGroupsRejected is returned by Run when the run completed but some
// groups were written to the error report instead of the output.
var ErrGroupsRejected = errors.New("some groups were rejected")

// App holds the dependencies of a run.
type App struct {
	cfg      *Config
	logger   *slog.Logger
	registry *custom.Registry
	outW     io.Writer
	errW     io.Writer
}

// Summary describes a finished run.
type Summary struct {
	driver.Stats
	Records int
	Report  []report.Record
}

// New creates an App. Logs and, unless ReportPath is set, the error report
// go to errW; entity records go to outW. A nil registry gets the builtins.
func New(cfg *Config, outW, errW io.Writer, registry *custom.Registry) (*App, error) {
	if registry == nil {
		registry = custom.NewRegistry()
		if err := custom.RegisterBuiltins(registry); err != nil {
			return nil, fmt.Errorf("failed to register builtin functions: %w", err)
		}
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		outW:     outW,
		errW:     errW,
	}, nil
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Check loads the manifest and returns every diagnostic. The manifest is
// nil when there are errors.
func (a *App) Check() (*mapping.Manifest, *diagnostic.Diagnostics, error) {
	data, err := os.ReadFile(a.cfg.ManifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest %s: %w", a.cfg.ManifestPath, err)
	}

	m, diags := mapping.Check(data, mapping.WithRegistry(a.registry))
	if diags.HasErrors() {
		return nil, diags, nil
	}

	return m, diags, nil
}

// Load loads and validates the manifest.
func (a *App) Load() (*mapping.Manifest, error) {
	m, err := mapping.LoadFile(a.cfg.ManifestPath, mapping.WithRegistry(a.registry))
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Manifest loaded",
		"path", a.cfg.ManifestPath, "columns", len(m.InputColumns), "variables", len(m.Variables))

	return m, nil
}

// Run maps the configured input and writes one record per root entity.
// Driver errors stop the run and are returned; rejected groups make Run
// return ErrGroupsRejected after all output was written.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	m, err := a.Load()
	if err != nil {
		return nil, err
	}

	ev, err := eval.New(m, eval.WithFunctions(a.registry), eval.WithJSONCacheSize(a.cfg.JSONCacheSize))
	if err != nil {
		return nil, err
	}

	policy := driver.ContinueOnError
	if a.cfg.FailFast {
		policy = driver.FailFast
	}

	d := driver.New(build.New(ev), driver.WithPolicy(policy), driver.WithLogger(a.logger))

	enc, err := entity.NewEncoder(entity.Format(a.cfg.OutputFormat), a.outW)
	if err != nil {
		return nil, err
	}

	src, err := rowsource.Open(a.cfg.InputPath, rowsource.Format(a.cfg.InputFormat))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	a.logger.Info("Run started", "input", a.cfg.InputPath, "format", src.Format(), "policy", policy)

	summary := &Summary{}

	var runErr error

	for res, err := range d.Run(ctx, src.Rows()) {
		if err != nil {
			runErr = err
			break
		}

		for _, root := range res.Roots() {
			if err := enc.Encode(entity.NewRecord(res.Key, root)); err != nil {
				return nil, err
			}

			summary.Records++
		}
	}

	summary.Stats = d.Stats()
	summary.Report = d.Report().Records()

	if err := a.writeReport(summary.Report); err != nil {
		return summary, err
	}

	if runErr != nil {
		return summary, runErr
	}

	if len(summary.Report) > 0 {
		return summary, fmt.Errorf("%w: %d of %d groups", ErrGroupsRejected, summary.FailedGroups, summary.Groups)
	}

	return summary, nil
}

// writeReport writes the error report as JSON lines.
func (a *App) writeReport(recs []report.Record) error {
	w := a.errW

	if a.cfg.ReportPath != "" {
		f, err := os.Create(a.cfg.ReportPath)
		if err != nil {
			return fmt.Errorf("failed to create report %s: %w", a.cfg.ReportPath, err)
		}
		defer f.Close()

		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}
