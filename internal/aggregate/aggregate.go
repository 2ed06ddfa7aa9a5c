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

// Package aggregate holds the mergeable per-key summary produced by the engine.
package aggregate

// Aggregate is the min/max/sum/count summary for one key.
// A zero Aggregate is not valid; use New for the first observation.
type Aggregate struct {
	Min   float32
	Max   float32
	Sum   float32
	Count uint64
}

// New returns an Aggregate for a single observed value.
func New(v float32) Aggregate {
	return Aggregate{Min: v, Max: v, Sum: v, Count: 1}
}

// Add absorbs a single observation.
func (a *Aggregate) Add(v float32) {
	if v < a.Min {
		a.Min = v
	}
	if v > a.Max {
		a.Max = v
	}
	a.Sum += v
	a.Count++
}

// Merge absorbs another Aggregate for the same key.
func (a *Aggregate) Merge(o Aggregate) {
	if o.Count == 0 {
		return
	}
	if a.Count == 0 {
		*a = o
		return
	}
	if o.Min < a.Min {
		a.Min = o.Min
	}
	if o.Max > a.Max {
		a.Max = o.Max
	}
	a.Sum += o.Sum
	a.Count += o.Count
}

// Mean returns Sum/Count, or 0 for an empty Aggregate.
func (a Aggregate) Mean() float32 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float32(a.Count)
}
