package driver

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"ingest-mapper/internal/build"
	"ingest-mapper/internal/entity"
	"ingest-mapper/internal/eval"
	"ingest-mapper/internal/mapping"
	"ingest-mapper/internal/report"
)

// Policy decides what a failed group does to the run.
type Policy int

const (
	// ContinueOnError records the failure and moves on to the next group.
	ContinueOnError Policy = iota
	// FailFast stops the run at the first failed group.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case FailFast:
		return "fail-fast"
	default:
		return "unknown"
	}
}

// Result is the graph built for one primary-key group.
type Result struct {
	Key   string
	Rows  int
	Graph *entity.Index
}

// Roots returns the root entities of the group.
func (r *Result) Roots() []*entity.Entity { return r.Graph.Roots() }

// Stats counts what a run processed.
type Stats struct {
	Rows         int
	Groups       int
	FailedGroups int
}

// Driver runs a builder over a row stream.
type Driver struct {
	builder  *build.Builder
	manifest *mapping.Manifest
	keyCols  []string
	policy  Policy
	logger  *slog.Logger

	report *report.Report
	stats  Stats
}

// Option configures a Driver.
type Option func(*Driver)

// WithPolicy sets the failure policy. The default is ContinueOnError.
func WithPolicy(p Policy) Option {
	return func(d *Driver) {
		d.policy = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Driver grouping by the primary key of the builder's manifest.
func New(b *build.Builder, opts ...Option) *Driver {
	d := &Driver{
		builder:  b,
		manifest: b.Manifest(),
		keyCols:  b.Manifest().PrimaryKey,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		report:  &report.Report{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Report returns the errors recorded so far.
func (d *Driver) Report() *report.Report { return d.report }

// Stats returns the counters of the last run.
func (d *Driver) Stats() Stats { return d.stats }

// group is the group being folded.
type group struct {
	key   string
	rows  int
	graph *entity.Index
	err   error
}

// Run returns the sequence of completed groups. Failed groups only show up
// in the report, unless the policy is FailFast. Driver errors (source
// failure, out-of-order keys, cancellation) end the sequence with an error
// and are recorded in the report as well.
func (d *Driver) Run(ctx context.Context, rows iter.Seq2[eval.Row, error]) iter.Seq2[*Result, error] {
	return func(yield func(*Result, error) bool) {
		d.stats = Stats{}
		seen := make(map[string]struct{})

		var cur *group

		// finish closes cur and reports whether the run goes on.
		finish := func() bool {
			g := cur
			cur = nil

			if g == nil {
				return true
			}

			d.stats.Groups++

			if g.err != nil {
				d.stats.FailedGroups++

				err := report.WithKey(g.key, g.err)
				d.report.Add(err)
				d.logger.Warn("Group failed", "key", g.key, "rows", g.rows, "error", err)

				if d.policy == FailFast {
					yield(nil, err)
					return false
				}

				return true
			}

			d.logger.Debug("Group built", "key", g.key, "rows", g.rows, "roots", g.graph.Len())

			return yield(&Result{Key: g.key, Rows: g.rows, Graph: g.graph}, nil)
		}

		fatal := func(err error) {
			d.report.Add(err)
			yield(nil, err)
		}

		for row, err := range rows {
			if err != nil {
				d.logger.Error("Row source failed", "error", err)
				fatal(fmt.Errorf("%w: %w", report.ErrRowSource, err))

				return
			}

			d.stats.Rows++
			key := d.key(row, d.stats.Rows)

			if cur != nil && cur.key != key {
				if !finish() {
					return
				}
			}

			if cur == nil {
				if err := ctx.Err(); err != nil {
					d.logger.Info("Run cancelled", "groups", d.stats.Groups, "error", err)
					fatal(fmt.Errorf("%w: %w", report.ErrCancelled, err))

					return
				}

				if len(d.keyCols) > 0 {
					if _, dup := seen[key]; dup {
						d.logger.Error("Primary key out of order", "key", key)
						fatal(report.WithKey(key, fmt.Errorf("%w: key %s reappeared after other keys; input must be sorted by %s",
							report.ErrOutOfOrder, key, strings.Join(d.keyCols, ", "))))

						return
					}

					seen[key] = struct{}{}
				}

				cur = &group{key: key, graph: d.builder.NewGraph()}
			}

			cur.rows++

			if cur.err == nil {
				cur.err = d.checkColumns(row)
			}

			if cur.err == nil {
				cur.err = d.builder.Fold(cur.graph, row)
			}
		}

		if !finish() {
			return
		}

		d.logger.Info("Run finished",
			"rows", d.stats.Rows, "groups", d.stats.Groups, "failed", d.stats.FailedGroups)
	}
}

// checkColumns rejects a row carrying columns the manifest does not declare.
func (d *Driver) checkColumns(row eval.Row) error {
	var extra []string

	for c := range row {
		if !d.manifest.HasColumn(c) {
			extra = append(extra, c)
		}
	}

	if len(extra) == 0 {
		return nil
	}

	slices.Sort(extra)

	return report.At("input_columns", fmt.Errorf("%w: row has undeclared column(s) %s",
		report.ErrUnknownColumn, strings.Join(extra, ", ")))
}

// key renders the primary key of row. Without key columns every row is
// its own group, named by its 1-based position.
func (d *Driver) key(row eval.Row, n int) string {
	switch len(d.keyCols) {
	case 0:
		return "#" + strconv.Itoa(n)
	case 1:
		return row[d.keyCols[0]]
	}

	parts := make([]string, len(d.keyCols))
	for i, c := range d.keyCols {
		parts[i] = strconv.Quote(row[c])
	}

	return strings.Join(parts, ",")
}
