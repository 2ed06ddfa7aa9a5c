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

// Package partition splits an input buffer into record-aligned byte ranges.
package partition

import "bytes"

// Separator terminates a record.
const Separator = '\n'

// Range is the half-open byte interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range holds no bytes.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Split divides data into n contiguous ranges, one per worker.
//
// Each cut is moved forward from the ideal even split to the next
// Separator, which then belongs to neither neighbouring range. The last
// range always ends at len(data), so a trailing line without a terminator
// stays in it. When data is shorter than n, or has no separators, the
// first range takes everything and the remaining ranges are empty at
// len(data). n < 1 is treated as 1.
func Split(data []byte, n int) []Range {
	if n < 1 {
		n = 1
	}
	total := len(data)
	ranges := make([]Range, n)
	if total < n {
		ranges[0] = Range{Start: 0, End: total}
		for i := 1; i < n; i++ {
			ranges[i] = Range{Start: total, End: total}
		}
		return ranges
	}

	step := total / n
	start := 0
	for i := 0; i < n; i++ {
		if i == n-1 || start >= total {
			ranges[i] = Range{Start: min(start, total), End: total}
			start = total
			continue
		}

		cut := max(i*step+step, start)
		end := total
		if j := bytes.IndexByte(data[cut:], Separator); j >= 0 {
			end = cut + j
		}

		ranges[i] = Range{Start: start, End: end}
		start = end + 1
	}
	return ranges
}
