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

package logctx

import (
	"context"
	"log/slog"
)

type contextKey struct{}

var loggerKey = contextKey{}

// WithLogger returns a new context with the given logger stored in it.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves a logger from the context. If no logger is found,
// it returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRun tags the context logger with the run identifier and input path.
func WithRun(ctx context.Context, runID, input string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(
		slog.String("runID", runID),
		slog.String("input", input),
	))
}

// WithWorker tags the context logger with a worker index and its byte range.
func WithWorker(ctx context.Context, worker, start, end int) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(
		slog.Int("worker", worker),
		slog.Int("rangeStart", start),
		slog.Int("rangeEnd", end),
	))
}
