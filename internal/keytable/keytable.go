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

// Package keytable implements the key -> Aggregate table used by the
// aggregation engine.
//
// Keys are stored as borrowed byte slices: the table never copies key bytes,
// so whatever buffer a key points into must outlive the table and anything
// derived from it.
package keytable

import (
	"bytes"
	"iter"

	"github.com/cespare/xxhash/v2"

	"github.com/cardinalhq/lakeagg/internal/aggregate"
)

const (
	// maxLoadFactor is the threshold for growing the table.
	maxLoadFactor = 0.7

	// initialCapacity is the minimum size of the table.
	initialCapacity = 16

	// DefaultCapacity fits the usual few hundred to ten thousand keys
	// without a rebuild.
	DefaultCapacity = 1 << 14
)

// entry is one slot in the open-addressed table.
type entry struct {
	hash uint64
	key  []byte
	agg  aggregate.Aggregate
	used bool
}

// Table is an open-addressed hash table with linear probing.
// There is no deletion, so there are no tombstones.
// A Table is not safe for concurrent use.
type Table struct {
	entries  []entry
	size     int
	capacity int
}

// New creates a table able to hold at least capacity slots.
func New(capacity int) *Table {
	if capacity < initialCapacity {
		capacity = initialCapacity
	}
	capacity = nextPowerOf2(capacity)
	return &Table{
		entries:  make([]entry, capacity),
		capacity: capacity,
	}
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

func (t *Table) index(h uint64) int {
	return int(h & uint64(t.capacity-1))
}

// slot returns the slot holding key, or the empty slot where it belongs.
func (t *Table) slot(h uint64, key []byte) *entry {
	idx := t.index(h)
	for {
		e := &t.entries[idx]
		if !e.used {
			return e
		}
		if e.hash == h && bytes.Equal(e.key, key) {
			return e
		}
		idx = (idx + 1) & (t.capacity - 1)
	}
}

// insert places a new entry for key. e is the empty slot found by the probe;
// if the table has to grow first, the slot is looked up again.
func (t *Table) insert(e *entry, h uint64, key []byte, agg aggregate.Aggregate) {
	if float64(t.size+1)/float64(t.capacity) > maxLoadFactor {
		t.rebuild(t.capacity * 2)
		e = t.slot(h, key)
	}
	*e = entry{hash: h, key: key, agg: agg, used: true}
	t.size++
}

// Observe records one value for key, creating the Aggregate on first sight.
// It reports whether the key was newly inserted.
func (t *Table) Observe(key []byte, v float32) bool {
	h := xxhash.Sum64(key)
	e := t.slot(h, key)
	if e.used {
		e.agg.Add(v)
		return false
	}
	t.insert(e, h, key, aggregate.New(v))
	return true
}

// MergeAggregate folds agg into the Aggregate stored for key.
func (t *Table) MergeAggregate(key []byte, agg aggregate.Aggregate) {
	h := xxhash.Sum64(key)
	e := t.slot(h, key)
	if e.used {
		e.agg.Merge(agg)
		return
	}
	t.insert(e, h, key, agg)
}

// Get returns the Aggregate for key.
func (t *Table) Get(key []byte) (aggregate.Aggregate, bool) {
	if t.size == 0 {
		return aggregate.Aggregate{}, false
	}
	e := t.slot(xxhash.Sum64(key), key)
	if !e.used {
		return aggregate.Aggregate{}, false
	}
	return e.agg, true
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	return t.size
}

// Cap returns the current number of slots.
func (t *Table) Cap() int {
	return t.capacity
}

// All iterates over every key and its Aggregate in slot order.
func (t *Table) All() iter.Seq2[[]byte, aggregate.Aggregate] {
	return func(yield func([]byte, aggregate.Aggregate) bool) {
		for i := range t.entries {
			e := &t.entries[i]
			if !e.used {
				continue
			}
			if !yield(e.key, e.agg) {
				return
			}
		}
	}
}

// rebuild rehashes every entry into a table of newCapacity slots.
func (t *Table) rebuild(newCapacity int) {
	old := t.entries
	t.entries = make([]entry, newCapacity)
	t.capacity = newCapacity
	for i := range old {
		e := &old[i]
		if !e.used {
			continue
		}
		*t.slot(e.hash, e.key) = *e
	}
}
