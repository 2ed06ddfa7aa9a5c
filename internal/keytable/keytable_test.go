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

package keytable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/lakeagg/internal/aggregate"
)

func TestTable_BasicOperations(t *testing.T) {
	tbl := New(0)

	assert.Equal(t, 0, tbl.Len())
	_, ok := tbl.Get([]byte("Hamburg"))
	assert.False(t, ok)

	assert.True(t, tbl.Observe([]byte("Hamburg"), 12.0))
	assert.True(t, tbl.Observe([]byte("Berlin"), 5.5))
	assert.False(t, tbl.Observe([]byte("Hamburg"), 8.0))
	assert.Equal(t, 2, tbl.Len())

	agg, ok := tbl.Get([]byte("Hamburg"))
	require.True(t, ok)
	assert.Equal(t, aggregate.Aggregate{Min: 8, Max: 12, Sum: 20, Count: 2}, agg)

	agg, ok = tbl.Get([]byte("Berlin"))
	require.True(t, ok)
	assert.Equal(t, aggregate.New(5.5), agg)
}

func TestTable_KeysAreBorrowed(t *testing.T) {
	buf := []byte("Oslo;1.0")
	tbl := New(0)
	tbl.Observe(buf[:4], 1)

	for k := range tbl.All() {
		assert.Same(t, &buf[0], &k[0])
	}
}

func TestTable_Resize(t *testing.T) {
	tbl := New(0)
	assert.Equal(t, initialCapacity, tbl.Cap())

	// 16 * 0.7 = 11.2, so the 12th insert grows the table
	for i := range 11 {
		tbl.Observe([]byte(fmt.Sprintf("k%02d", i)), float32(i))
	}
	assert.Equal(t, 16, tbl.Cap())

	tbl.Observe([]byte("k11"), 11)
	assert.Equal(t, 32, tbl.Cap())

	assert.Equal(t, 12, tbl.Len())
	for i := range 12 {
		agg, ok := tbl.Get([]byte(fmt.Sprintf("k%02d", i)))
		require.True(t, ok, "key %d not found", i)
		assert.Equal(t, aggregate.New(float32(i)), agg)
	}
}

func TestTable_ManyKeys(t *testing.T) {
	tbl := New(0)
	n := 10000

	for round := range 3 {
		for i := range n {
			tbl.Observe([]byte(fmt.Sprintf("station-%d", i)), float32(round))
		}
	}
	assert.Equal(t, n, tbl.Len())

	for i := range n {
		agg, ok := tbl.Get([]byte(fmt.Sprintf("station-%d", i)))
		require.True(t, ok, "key %d not found", i)
		assert.Equal(t, uint64(3), agg.Count)
		assert.Equal(t, float32(0), agg.Min)
		assert.Equal(t, float32(2), agg.Max)
	}

	seen := 0
	for range tbl.All() {
		seen++
	}
	assert.Equal(t, n, seen)
}

func TestTable_MergeAggregate(t *testing.T) {
	a := New(0)
	a.Observe([]byte("Paris"), 10)
	a.Observe([]byte("Rome"), 20)

	b := New(0)
	b.Observe([]byte("Paris"), -5)
	b.Observe([]byte("Lima"), 15)

	for k, agg := range b.All() {
		a.MergeAggregate(k, agg)
	}

	assert.Equal(t, 3, a.Len())
	paris, _ := a.Get([]byte("Paris"))
	assert.Equal(t, aggregate.Aggregate{Min: -5, Max: 10, Sum: 5, Count: 2}, paris)
	lima, _ := a.Get([]byte("Lima"))
	assert.Equal(t, aggregate.New(15), lima)
}

func TestTable_EmptyKey(t *testing.T) {
	tbl := New(0)
	tbl.Observe([]byte{}, 1)
	tbl.Observe(nil, 2)

	agg, ok := tbl.Get([]byte{})
	require.True(t, ok)
	assert.Equal(t, uint64(2), agg.Count)
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_AllStopsEarly(t *testing.T) {
	tbl := New(0)
	for i := range 5 {
		tbl.Observe([]byte{byte('a' + i)}, 1)
	}
	seen := 0
	for range tbl.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestNextPowerOf2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32}, {1000, 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPowerOf2(tt.in), "nextPowerOf2(%d)", tt.in)
	}
}

func BenchmarkTable_Observe(b *testing.B) {
	keys := make([][]byte, 400)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("station-%03d", i))
	}
	tbl := New(DefaultCapacity)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.Observe(keys[i%len(keys)], float32(i%100))
	}
}
