// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/lakeagg/config"
	"github.com/cardinalhq/lakeagg/internal/bytesource"
	"github.com/cardinalhq/lakeagg/internal/debugging"
	"github.com/cardinalhq/lakeagg/internal/engine"
	"github.com/cardinalhq/lakeagg/internal/idgen"
	"github.com/cardinalhq/lakeagg/internal/logctx"
	"github.com/cardinalhq/lakeagg/internal/report"
	"github.com/cardinalhq/lakeagg/internal/valueparse"
)

var errBinaryToTerminal = errors.New("refusing to write binary output to a terminal")

func init() {
	d := config.DefaultAggregateConfig()

	cmd := &cobra.Command{
		Use:   "aggregate [file]",
		Short: "Compute min, mean and max per key",
		Long: `Reads a newline-delimited "key;value" file and prints one line per
distinct key with the minimum, maximum and mean value, sorted by key.

Malformed records are reported and skipped. Flags override values from
the config file and LAKEAGG_AGGREGATE_* environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configFile)
			if err != nil {
				return err
			}
			opts := cfg.Aggregate
			if err := applyAggregateFlags(c, &opts); err != nil {
				return err
			}
			if len(args) == 1 {
				opts.File = args[0]
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			ctx, doneFx, err := setupTelemetry("lakeagg-aggregate")
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			debugging.RunPprof(ctx)

			return runAggregate(ctx, opts, c.OutOrStdout())
		},
	}

	rootCmd.AddCommand(cmd)

	f := cmd.Flags()
	f.StringP("file", "f", d.File, "Input file of key;value records")
	f.IntP("workers", "w", d.Workers, "Number of parallel workers (0 for GOMAXPROCS)")
	f.String("parser", d.Parser, "Value parser: "+strings.Join(valueparse.Names(), ", "))
	f.String("format", d.Format, "Output format: "+strings.Join(report.Names(), ", "))
	f.StringP("output", "o", d.Output, "Write the report to this file instead of stdout")
	f.String("source", d.Source, "How to read the input: mmap or read")
	f.Bool("per-worker-views", d.PerWorkerViews, "Give each worker its own view of the input")
	f.Int("min-value-width", d.MinValueWidth, "Minimum width of a value field")
	f.Bool("quiet-malformed", d.QuietMalformed, "Do not log malformed records")
}

// applyAggregateFlags copies explicitly set flags over cfg.
func applyAggregateFlags(c *cobra.Command, cfg *config.AggregateConfig) error {
	f := c.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !f.Changed(name) {
			return
		}
		if e := apply(); e != nil {
			err = fmt.Errorf("failed to get %s flag: %w", name, e)
		}
	}
	set("file", func() (e error) { cfg.File, e = f.GetString("file"); return })
	set("workers", func() (e error) { cfg.Workers, e = f.GetInt("workers"); return })
	set("parser", func() (e error) { cfg.Parser, e = f.GetString("parser"); return })
	set("format", func() (e error) { cfg.Format, e = f.GetString("format"); return })
	set("output", func() (e error) { cfg.Output, e = f.GetString("output"); return })
	set("source", func() (e error) { cfg.Source, e = f.GetString("source"); return })
	set("per-worker-views", func() (e error) { cfg.PerWorkerViews, e = f.GetBool("per-worker-views"); return })
	set("min-value-width", func() (e error) { cfg.MinValueWidth, e = f.GetInt("min-value-width"); return })
	set("quiet-malformed", func() (e error) { cfg.QuietMalformed, e = f.GetBool("quiet-malformed"); return })
	return err
}

// runAggregate aggregates cfg.File and writes the report to cfg.Output,
// or to stdout when no output file is configured.
func runAggregate(ctx context.Context, cfg config.AggregateConfig, stdout io.Writer) error {
	mode, err := bytesource.ParseMode(cfg.Source)
	if err != nil {
		return err
	}
	parse, err := valueparse.Lookup(cfg.Parser)
	if err != nil {
		return err
	}
	writer, err := report.Lookup(cfg.Format)
	if err != nil {
		return err
	}

	toStdout := cfg.Output == "" || cfg.Output == "-"
	if toStdout && report.IsBinary(cfg.Format) && isTerminal(stdout) {
		return fmt.Errorf("%w: use --output or redirect stdout for %s", errBinaryToTerminal, cfg.Format)
	}

	var reporter engine.MalformedReporter = engine.LogReporter{}
	if cfg.QuietMalformed {
		reporter = engine.DiscardReporter{}
	}

	runID := idgen.NextRunID()
	ctx = logctx.WithRun(ctx, runID, cfg.File)
	ll := logctx.FromContext(ctx)

	res, err := engine.Run(ctx, bytesource.FileOpener(cfg.File, mode), engine.Options{
		Workers:        cfg.Workers,
		MinValueWidth:  cfg.MinValueWidth,
		Parser:         parse,
		PerWorkerViews: cfg.PerWorkerViews,
		Reporter:       reporter,
	})
	if err != nil {
		return fmt.Errorf("failed to aggregate %s: %w", cfg.File, err)
	}
	// Row keys borrow from the input views until the report is written.
	defer func() { _ = res.Close() }()

	if toStdout {
		if err := writer.Write(stdout, res.Rows); err != nil {
			return fmt.Errorf("failed to write %s report: %w", cfg.Format, err)
		}
	} else if err := writeReportFile(cfg.Output, writer, res.Rows); err != nil {
		return err
	}

	ll.Info("Aggregation complete",
		slog.String("format", cfg.Format),
		slog.Int("keys", res.Stats.Keys),
		slog.Uint64("records", res.Stats.Records),
		slog.Uint64("malformed", res.Stats.Malformed),
		slog.Int("workers", res.Stats.Workers),
		slog.Duration("elapsed", res.Stats.Elapsed))
	return nil
}

// writeReportFile writes the report to path. A partially written file is
// removed on failure.
func writeReportFile(path string, writer report.Writer, rows []engine.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := writer.Write(f, rows); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}
