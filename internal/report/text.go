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
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cardinalhq/lakeagg/internal/engine"
)

// writeText emits "<key> min <min> max <max> mean <mean>" per row.
func writeText(w io.Writer, rows []engine.Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s min %.1f max %.1f mean %.1f\n",
			r.Key, round1(r.Min), round1(r.Max), round1(r.Mean())); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeTable emits an aligned, human-oriented table.
func writeTable(w io.Writer, rows []engine.Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%-20s min: %5.1f°C, max: %5.1f°C, mean: %5.1f°C\n",
			r.Key, round1(r.Min), round1(r.Max), round1(r.Mean())); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// write1BRC emits "{key=min/mean/max, ...}" on a single line.
func write1BRC(w io.Writer, rows []engine.Row) error {
	bw := bufio.NewWriter(w)
	if err := bw.WriteByte('{'); err != nil {
		return err
	}
	for i, r := range rows {
		if i > 0 {
			if _, err := bw.WriteString(", "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s=%.1f/%.1f/%.1f",
			r.Key, round1(r.Min), round1(r.Mean()), round1(r.Max)); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// writeJSON emits an indented JSON array of Records.
func writeJSON(w io.Writer, rows []engine.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Records(rows)); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}
