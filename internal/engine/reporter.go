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
	"log/slog"
	"sync"

	"github.com/cardinalhq/lakeagg/internal/logctx"
)

// MalformedReporter receives every skipped record. Workers call it
// concurrently.
type MalformedReporter interface {
	Malformed(ctx context.Context, err *MalformedRecordError)
}

// LogReporter logs each malformed record at warn level using the logger
// carried in the context.
type LogReporter struct{}

func (LogReporter) Malformed(ctx context.Context, err *MalformedRecordError) {
	logctx.FromContext(ctx).Warn("Skipping malformed record",
		slog.Int64("offset", err.Offset),
		slog.String("line", err.Line),
		slog.Any("error", err.Err))
}

// DiscardReporter drops malformed-record reports. They are still counted in
// the run statistics.
type DiscardReporter struct{}

func (DiscardReporter) Malformed(context.Context, *MalformedRecordError) {}

// CollectingReporter keeps every report in memory.
type CollectingReporter struct {
	mu      sync.Mutex
	records []*MalformedRecordError
}

func (c *CollectingReporter) Malformed(_ context.Context, err *MalformedRecordError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, err)
}

// Records returns the collected reports.
func (c *CollectingReporter) Records() []*MalformedRecordError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*MalformedRecordError, len(c.records))
	copy(out, c.records)
	return out
}
