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

// Package report renders aggregation results.
package report

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/cardinalhq/lakeagg/internal/engine"
)

// Writer renders rows, already sorted by key, to w.
type Writer interface {
	Write(w io.Writer, rows []engine.Row) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(w io.Writer, rows []engine.Row) error

func (f WriterFunc) Write(w io.Writer, rows []engine.Row) error {
	return f(w, rows)
}

const (
	FormatText    = "text"
	FormatTable   = "table"
	Format1BRC    = "1brc"
	FormatJSON    = "json"
	FormatCBOR    = "cbor"
	FormatParquet = "parquet"
	FormatArrow   = "arrow"
	FormatYAML    = "yaml"

	DefaultFormat = FormatText
)

var formats = map[string]Writer{
	FormatText:    WriterFunc(writeText),
	FormatTable:   WriterFunc(writeTable),
	Format1BRC:    WriterFunc(write1BRC),
	FormatJSON:    WriterFunc(writeJSON),
	FormatCBOR:    WriterFunc(writeCBOR),
	FormatParquet: WriterFunc(writeParquet),
	FormatArrow:   WriterFunc(writeArrow),
	FormatYAML:    WriterFunc(writeYAML),
}

// Lookup returns the Writer for a format name. An empty name selects
// DefaultFormat.
func Lookup(name string) (Writer, error) {
	if name == "" {
		name = DefaultFormat
	}
	w, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, Names())
	}
	return w, nil
}

// Names returns the supported format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(formats))
	for n := range formats {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// IsBinary reports whether the format produces non-text output.
func IsBinary(name string) bool {
	switch name {
	case FormatCBOR, FormatParquet, FormatArrow:
		return true
	}
	return false
}

// Record is the serialized form of one row.
type Record struct {
	Key   string  `json:"key" cbor:"key" yaml:"key"`
	Min   float32 `json:"min" cbor:"min" yaml:"min"`
	Max   float32 `json:"max" cbor:"max" yaml:"max"`
	Mean  float32 `json:"mean" cbor:"mean" yaml:"mean"`
	Count uint64  `json:"count" cbor:"count" yaml:"count"`
}

// Records converts rows into Records. Keys are copied, so the result does
// not borrow from the input views.
func Records(rows []engine.Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = Record{
			Key:   string(r.Key),
			Min:   r.Min,
			Max:   r.Max,
			Mean:  r.Mean(),
			Count: r.Count,
		}
	}
	return out
}

// round1 rounds half away from zero to one decimal and drops negative zero.
func round1(v float32) float64 {
	r := math.Round(float64(v)*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
