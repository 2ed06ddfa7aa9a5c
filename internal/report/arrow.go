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

package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/cardinalhq/lakeagg/internal/engine"
)

// ArrowSchema is the column layout written by the arrow format.
var ArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "key", Type: arrow.BinaryTypes.String},
	{Name: "min", Type: arrow.PrimitiveTypes.Float32},
	{Name: "max", Type: arrow.PrimitiveTypes.Float32},
	{Name: "mean", Type: arrow.PrimitiveTypes.Float32},
	{Name: "count", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

// writeArrow emits an Arrow IPC stream holding a single record batch.
func writeArrow(w io.Writer, rows []engine.Row) error {
	mem := memory.DefaultAllocator

	keys := array.NewStringBuilder(mem)
	mins := array.NewFloat32Builder(mem)
	maxs := array.NewFloat32Builder(mem)
	means := array.NewFloat32Builder(mem)
	counts := array.NewUint64Builder(mem)
	builders := []array.Builder{keys, mins, maxs, means, counts}
	defer func() {
		for _, b := range builders {
			b.Release()
		}
	}()

	for _, b := range builders {
		b.Reserve(len(rows))
	}
	for _, r := range rows {
		keys.BinaryBuilder.Append(r.Key)
		mins.Append(r.Min)
		maxs.Append(r.Max)
		means.Append(r.Mean())
		counts.Append(r.Count)
	}

	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
	}
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	batch := array.NewRecordBatch(ArrowSchema, arrays, int64(len(rows)))
	defer batch.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(ArrowSchema), ipc.WithAllocator(mem))
	if err := writer.Write(batch); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write arrow batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close arrow writer: %w", err)
	}
	return nil
}

// DecodeArrow reads a report written in the arrow format.
func DecodeArrow(r io.Reader) ([]Record, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow report: %w", err)
	}
	defer reader.Release()

	if !reader.Schema().Equal(ArrowSchema) {
		return nil, fmt.Errorf("unexpected arrow schema: %s", reader.Schema())
	}

	var out []Record
	for {
		batch, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading arrow batches: %w", err)
		}
		keys := batch.Column(0).(*array.String)
		mins := batch.Column(1).(*array.Float32)
		maxs := batch.Column(2).(*array.Float32)
		means := batch.Column(3).(*array.Float32)
		counts := batch.Column(4).(*array.Uint64)
		for i := range int(batch.NumRows()) {
			out = append(out, Record{
				Key:   keys.Value(i),
				Min:   mins.Value(i),
				Max:   maxs.Value(i),
				Mean:  means.Value(i),
				Count: counts.Value(i),
			})
		}
	}
	return out, nil
}
