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

	"github.com/parquet-go/parquet-go"

	"github.com/cardinalhq/lakeagg/internal/engine"
)

// ParquetSchema is the column layout written by the parquet format.
var ParquetSchema = parquet.NewSchema("station_agg", parquet.Group{
	"key":   parquet.String(),
	"min":   parquet.Leaf(parquet.DoubleType),
	"max":   parquet.Leaf(parquet.DoubleType),
	"mean":  parquet.Leaf(parquet.DoubleType),
	"count": parquet.Leaf(parquet.Int64Type),
})

// writeParquet emits a zstd-compressed parquet file, one row per key.
func writeParquet(w io.Writer, rows []engine.Row) error {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any{
			"key":   string(r.Key),
			"min":   float64(r.Min),
			"max":   float64(r.Max),
			"mean":  float64(r.Mean()),
			"count": int64(r.Count),
		}
	}

	writer := parquet.NewGenericWriter[map[string]any](w, ParquetSchema,
		parquet.Compression(&parquet.Zstd),
	)
	if len(out) > 0 {
		if _, err := writer.Write(out); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// DecodeParquet reads a report written in the parquet format.
func DecodeParquet(r io.ReaderAt, size int64) ([]Record, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet report: %w", err)
	}

	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer func() { _ = reader.Close() }()

	out := make([]Record, 0, pf.NumRows())
	batch := make([]map[string]any, 256)
	for {
		for i := range batch {
			batch[i] = make(map[string]any, 5)
		}
		n, err := reader.Read(batch)
		for _, row := range batch[:n] {
			out = append(out, Record{
				Key:   asString(row["key"]),
				Min:   float32(asFloat(row["min"])),
				Max:   float32(asFloat(row["max"])),
				Mean:  float32(asFloat(row["mean"])),
				Count: uint64(asInt(row["count"])),
			})
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error reading parquet rows: %w", err)
		}
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	}
	return 0
}

func asInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	}
	return 0
}
