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

// Package synth generates measurement files for benchmarks and tests.
package synth

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
)

// DefaultSeed makes generated files reproducible.
const DefaultSeed = 42

// Station is a key with a typical mean value.
type Station struct {
	Name string
	Mean float64
}

// Stations is the default key set.
var Stations = []Station{
	{"Abha", 18.0}, {"Abidjan", 26.0}, {"Accra", 26.4}, {"Addis Ababa", 16.0},
	{"Adelaide", 17.3}, {"Amsterdam", 10.2}, {"Anchorage", 2.8}, {"Athens", 19.2},
	{"Baghdad", 22.77}, {"Bangkok", 28.6}, {"Barcelona", 18.2}, {"Berlin", 10.3},
	{"Bogotá", 13.4}, {"Boston", 10.9}, {"Cairo", 21.4}, {"Cape Town", 16.2},
	{"Chicago", 9.8}, {"Dakar", 24.0}, {"Dublin", 9.8}, {"Hamburg", 9.7},
	{"Helsinki", 5.9}, {"Hong Kong", 23.3}, {"İzmir", 17.9}, {"Jakarta", 26.7},
	{"Kyiv", 8.4}, {"Lagos", 26.8}, {"Lima", 19.9}, {"London", 11.3},
	{"Madrid", 15.0}, {"Montreal", 6.8}, {"Moscow", 5.8}, {"Mumbai", 27.1},
	{"Nairobi", 17.8}, {"Oslo", 5.7}, {"Paris", 12.3}, {"Perth", 18.7},
	{"Reykjavík", 4.3}, {"Rome", 15.2}, {"San Francisco", 14.6}, {"Santiago", 14.7},
	{"São Paulo", 19.7}, {"Seoul", 12.5}, {"Singapore", 27.0}, {"Stockholm", 6.6},
	{"Sydney", 17.7}, {"Tokyo", 15.4}, {"Toronto", 9.4}, {"Vancouver", 10.4},
	{"Vienna", 10.4}, {"Zürich", 9.3},
}

// Generator writes key;value records.
type Generator struct {
	rand     *rand.Rand
	stations []Station
}

// NewGenerator creates a generator over the default stations.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rand:     rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		stations: Stations,
	}
}

// WithStations replaces the key set.
func (g *Generator) WithStations(stations []Station) *Generator {
	g.stations = stations
	return g
}

// value returns a one-decimal value around mean, clamped to [-99.9, 99.9].
func (g *Generator) value(mean float64) float64 {
	v := g.rand.NormFloat64()*10 + mean
	v = max(-99.9, min(99.9, v))
	return float64(int64(v*10)) / 10
}

// Write emits rows newline-terminated records to w.
func (g *Generator) Write(w io.Writer, rows int) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	line := make([]byte, 0, 128)
	for i := 0; i < rows; i++ {
		s := g.stations[g.rand.IntN(len(g.stations))]
		line = append(line[:0], s.Name...)
		line = append(line, ';')
		line = strconv.AppendFloat(line, g.value(s.Mean), 'f', 1, 64)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// Bytes returns rows records as a buffer.
func (g *Generator) Bytes(rows int) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_ = g.Write(&buf, rows)
	return buf.Bytes()
}
