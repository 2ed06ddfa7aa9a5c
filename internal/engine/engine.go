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

// Package engine runs the parallel chunked aggregation: the input is split
// into record-aligned ranges, each range is scanned by its own worker into a
// private table, and the tables are merged into one sorted report once every
// worker has finished.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/lakeagg/internal/bytesource"
	"github.com/cardinalhq/lakeagg/internal/keytable"
	"github.com/cardinalhq/lakeagg/internal/logctx"
	"github.com/cardinalhq/lakeagg/internal/partition"
	"github.com/cardinalhq/lakeagg/internal/valueparse"
)

// DefaultMinValueWidth is the shortest value field the worker assumes,
// e.g. "1.2".
const DefaultMinValueWidth = 3

// Options configures a run. The zero value is usable.
type Options struct {
	// Workers is the number of parallel workers. Zero means GOMAXPROCS.
	Workers int
	// MinValueWidth is the minimum length of a well-formed value field.
	// The delimiter search skips that many trailing bytes. Zero means
	// DefaultMinValueWidth.
	MinValueWidth int
	// Parser converts the value field. Nil means valueparse.DefaultName.
	Parser valueparse.Func
	// PerWorkerViews gives every worker its own view of the input instead
	// of sharing the one used for partitioning.
	PerWorkerViews bool
	// Reporter receives malformed records. Nil means LogReporter.
	Reporter MalformedReporter
	// TableCapacity is the initial slot count of each worker table.
	TableCapacity int
}

func (o Options) withDefaults() (Options, error) {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MinValueWidth <= 0 {
		o.MinValueWidth = DefaultMinValueWidth
	}
	if o.Parser == nil {
		p, err := valueparse.Lookup(valueparse.DefaultName)
		if err != nil {
			return o, err
		}
		o.Parser = p
	}
	if o.Reporter == nil {
		o.Reporter = LogReporter{}
	}
	if o.TableCapacity <= 0 {
		o.TableCapacity = keytable.DefaultCapacity
	}
	return o, nil
}

// Stats summarizes a run.
type Stats struct {
	Bytes     int64
	Records   uint64
	Malformed uint64
	Keys      int
	Workers   int
	Views     int
	Elapsed   time.Duration
}

// Result is the outcome of a successful run. Row keys borrow from the input
// views, so Close must only be called once the rows are no longer used.
type Result struct {
	Rows  []Row
	Stats Stats
	views *bytesource.Views
}

// Close releases every input view the rows borrow from. Release failures
// are logged, not returned as run failures.
func (r *Result) Close() error {
	if r == nil || r.views == nil {
		return nil
	}
	if err := r.views.Close(); err != nil {
		slog.Warn("Failed to release input views", slog.Any("error", err))
	}
	r.Rows = nil
	return nil
}

// Run aggregates the input produced by opener.
//
// Any worker failure, including a panic or cancellation of ctx, fails the
// whole run and no partial result is returned.
func Run(ctx context.Context, opener bytesource.Opener, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	started := time.Now()
	ll := logctx.FromContext(ctx)

	ctx, span := startSpan(ctx, "lakeagg.engine.run",
		attribute.Int("workers", opts.Workers),
		attribute.Bool("per_worker_views", opts.PerWorkerViews))

	views := &bytesource.Views{}
	result, err := run(ctx, views, opener, opts)
	if err != nil {
		if cerr := views.Close(); cerr != nil {
			ll.Warn("Failed to release input views", slog.Any("error", cerr))
		}
		endSpan(span, err)
		return nil, err
	}

	result.Stats.Elapsed = time.Since(started)
	span.SetAttributes(
		attribute.Int64("bytes", result.Stats.Bytes),
		attribute.Int("keys", result.Stats.Keys),
		attribute.Int64("malformed", int64(result.Stats.Malformed)))
	endSpan(span, nil)
	recordRunMetrics(ctx, result.Stats)
	ll.Debug("Aggregation complete",
		slog.Int64("bytes", result.Stats.Bytes),
		slog.Uint64("records", result.Stats.Records),
		slog.Uint64("malformed", result.Stats.Malformed),
		slog.Int("keys", result.Stats.Keys),
		slog.Duration("elapsed", result.Stats.Elapsed))
	return result, nil
}

func run(ctx context.Context, views *bytesource.Views, opener bytesource.Opener, opts Options) (*Result, error) {
	shared, err := views.Open(opener)
	if err != nil {
		return nil, err
	}
	data := shared.Bytes()
	ranges := partition.Split(data, opts.Workers)
	logctx.FromContext(ctx).Debug("Partitioned input",
		slog.Int("bytes", len(data)),
		slog.Int("workers", len(ranges)))

	workers := make([]*worker, len(ranges))
	for i, r := range ranges {
		if r.Empty() {
			continue
		}
		view := data
		if opts.PerWorkerViews && i > 0 {
			src, err := views.Open(opener)
			if err != nil {
				return nil, err
			}
			if src.Len() != len(data) {
				return nil, fmt.Errorf("%w: view %d has %d bytes, expected %d", ErrViewMismatch, i, src.Len(), len(data))
			}
			view = src.Bytes()
		}
		workers[i] = &worker{
			data:          view,
			rng:           r,
			parse:         opts.Parser,
			minValueWidth: opts.MinValueWidth,
			reporter:      opts.Reporter,
			table:         keytable.New(opts.TableCapacity),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range workers {
		if w == nil {
			continue
		}
		g.Go(func() (err error) {
			wctx, span := startSpan(gctx, "lakeagg.engine.worker",
				attribute.Int("worker", i),
				attribute.Int("range_bytes", w.rng.Len()))
			defer func() { endSpan(span, err) }()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: worker %d: %v", ErrWorkerFailed, i, r)
				}
			}()
			wctx = logctx.WithWorker(wctx, i, w.rng.Start, w.rng.End)
			if err := w.run(wctx); err != nil {
				return err
			}
			logctx.FromContext(wctx).Debug("Worker finished",
				slog.Uint64("records", w.stats.records),
				slog.Int("keys", w.table.Len()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := Stats{
		Bytes:   int64(len(data)),
		Workers: len(ranges),
		Views:   views.Len(),
	}
	tables := make([]*keytable.Table, 0, len(workers))
	for _, w := range workers {
		if w == nil {
			continue
		}
		stats.Records += w.stats.records
		stats.Malformed += w.stats.malformed
		tables = append(tables, w.table)
	}

	rows := Sorted(Merge(tables))
	stats.Keys = len(rows)

	return &Result{Rows: rows, Stats: stats, views: views}, nil
}
