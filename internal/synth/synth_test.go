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

package synth

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Format(t *testing.T) {
	data := NewGenerator(DefaultSeed).Bytes(1000)
	lines := bytes.Split(bytes.TrimSuffix(data, []byte{'\n'}), []byte{'\n'})
	require.Len(t, lines, 1000)

	for _, line := range lines {
		mid := bytes.LastIndexByte(line, ';')
		require.Greater(t, mid, 0, "line %q", line)
		value := line[mid+1:]
		assert.GreaterOrEqual(t, len(value), 3, "line %q", line)

		v, err := strconv.ParseFloat(string(value), 64)
		require.NoError(t, err, "line %q", line)
		assert.GreaterOrEqual(t, v, -99.9)
		assert.LessOrEqual(t, v, 99.9)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(7).Bytes(500)
	b := NewGenerator(7).Bytes(500)
	c := NewGenerator(8).Bytes(500)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerator_WithStations(t *testing.T) {
	data := NewGenerator(1).WithStations([]Station{{"Only", 0}}).Bytes(10)
	for _, line := range bytes.Split(bytes.TrimSuffix(data, []byte{'\n'}), []byte{'\n'}) {
		assert.True(t, bytes.HasPrefix(line, []byte("Only;")), "line %q", line)
	}
}
