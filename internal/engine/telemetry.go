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

package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cardinalhq/lakeagg/internal/engine")

var (
	recordsCounter   otelmetric.Int64Counter
	malformedCounter otelmetric.Int64Counter
	bytesCounter     otelmetric.Int64Counter
	runDuration      otelmetric.Float64Histogram
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/lakeagg/internal/engine")

	var err error
	recordsCounter, err = meter.Int64Counter(
		"lakeagg.engine.records",
		otelmetric.WithDescription("Number of records scanned"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create records counter: %w", err))
	}

	malformedCounter, err = meter.Int64Counter(
		"lakeagg.engine.malformed",
		otelmetric.WithDescription("Number of malformed records skipped"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create malformed counter: %w", err))
	}

	bytesCounter, err = meter.Int64Counter(
		"lakeagg.engine.bytes",
		otelmetric.WithUnit("By"),
		otelmetric.WithDescription("Number of input bytes scanned"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create bytes counter: %w", err))
	}

	runDuration, err = meter.Float64Histogram(
		"lakeagg.engine.duration",
		otelmetric.WithUnit("s"),
		otelmetric.WithDescription("Wall time of a complete aggregation run"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create duration histogram: %w", err))
	}
}

// recordRunMetrics publishes the statistics of a finished run.
func recordRunMetrics(ctx context.Context, stats Stats) {
	attrs := otelmetric.WithAttributes(attribute.Int("workers", stats.Workers))
	recordsCounter.Add(ctx, int64(stats.Records), attrs)
	malformedCounter.Add(ctx, int64(stats.Malformed), attrs)
	bytesCounter.Add(ctx, stats.Bytes, attrs)
	runDuration.Record(ctx, stats.Elapsed.Seconds(), attrs)
}

// startSpan starts a span carrying attrs.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err, if any, and ends span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
