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
	"bytes"
	"context"

	"github.com/cardinalhq/lakeagg/internal/keytable"
	"github.com/cardinalhq/lakeagg/internal/partition"
	"github.com/cardinalhq/lakeagg/internal/valueparse"
)

const (
	// FieldSeparator splits a record into key and value.
	FieldSeparator = ';'

	// cancelCheckStride is how many input bytes a worker scans between
	// context checks.
	cancelCheckStride = 64 << 10
)

// workerStats counts what one worker saw.
type workerStats struct {
	records   uint64
	malformed uint64
}

// worker scans one byte range into a private table.
type worker struct {
	data          []byte
	rng           partition.Range
	parse         valueparse.Func
	minValueWidth int
	reporter      MalformedReporter
	table         *keytable.Table
	stats         workerStats
}

// lastSeparator returns the index of the field separator in line, or -1.
//
// The value field is at least minValueWidth bytes, so the last minValueWidth
// bytes cannot hold the separator and are not searched. If that window has
// no separator, the whole line is searched so a short value is still found.
func lastSeparator(line []byte, minValueWidth int) int {
	if window := len(line) - minValueWidth; window > 0 {
		if mid := bytes.LastIndexByte(line[:window], FieldSeparator); mid >= 0 {
			return mid
		}
	}
	return bytes.LastIndexByte(line, FieldSeparator)
}

// run scans every record in the worker's range. The only error it returns
// is a context error.
func (w *worker) run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := w.data[w.rng.Start:w.rng.End]
	nextCheck := cancelCheckStride
	pos := 0
	for pos < len(data) {
		lineStart := pos
		var line []byte
		if nl := bytes.IndexByte(data[pos:], partition.Separator); nl >= 0 {
			line = data[pos : pos+nl]
			pos += nl + 1
		} else {
			line = data[pos:]
			pos = len(data)
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(line) == 0 {
			continue
		}

		w.stats.records++
		w.record(ctx, lineStart, line)

		if pos >= nextCheck {
			if err := ctx.Err(); err != nil {
				return err
			}
			nextCheck = pos + cancelCheckStride
		}
	}
	return nil
}

// record splits, parses and accumulates one non-empty record.
func (w *worker) record(ctx context.Context, lineStart int, line []byte) {
	mid := lastSeparator(line, w.minValueWidth)
	if mid < 0 {
		w.malformed(ctx, lineStart, line, ErrNoSeparator)
		return
	}
	v, err := w.parse(line[mid+1:])
	if err != nil {
		w.malformed(ctx, lineStart, line, err)
		return
	}
	w.table.Observe(line[:mid], v)
}

func (w *worker) malformed(ctx context.Context, lineStart int, line []byte, err error) {
	w.stats.malformed++
	w.reporter.Malformed(ctx, &MalformedRecordError{
		Offset: int64(w.rng.Start + lineStart),
		Line:   string(line),
		Err:    err,
	})
}
