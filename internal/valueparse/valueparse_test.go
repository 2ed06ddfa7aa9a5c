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

package valueparse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers_Decimal(t *testing.T) {
	tests := []struct {
		in   string
		want float32
	}{
		{"1.2", 1.2},
		{"-1.2", -1.2},
		{"+3.4", 3.4},
		{"12.0", 12},
		{"-99.9", -99.9},
		{"0.0", 0},
		{"5", 5},
		{"5.", 5},
		{".5", 0.5},
		{"123.456", 123.456},
	}

	for _, name := range Names() {
		parse, err := Lookup(name)
		require.NoError(t, err)
		for _, tt := range tests {
			got, err := parse([]byte(tt.in))
			require.NoError(t, err, "%s(%q)", name, tt.in)
			assert.InDelta(t, tt.want, got, 1e-5, "%s(%q)", name, tt.in)
		}
	}
}

func TestParsers_Invalid(t *testing.T) {
	inputs := []string{
		"", "-", "nope", "1.2.3", "1,2", "--1", "1.2x", " 1.2",
		"NaN", "nan", "-NaN", "inf", "+Inf", "-infinity", "0x1p3", "0X1.8P1", "1_000", "1e999",
	}

	for _, name := range Names() {
		parse, err := Lookup(name)
		require.NoError(t, err)
		for _, in := range inputs {
			_, err := parse([]byte(in))
			assert.Error(t, err, "%s(%q)", name, in)
		}
	}
}

func TestFixed_ErrSyntax(t *testing.T) {
	_, err := Fixed([]byte("abc"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestStrconv_ErrSyntax(t *testing.T) {
	for _, in := range []string{"NaN", "inf", "0x1p3", "1e999", "abc"} {
		_, err := Strconv([]byte(in))
		assert.ErrorIs(t, err, ErrSyntax, "%q", in)
	}
}

func TestStrconv_Exponent(t *testing.T) {
	got, err := Strconv([]byte("1.5e1"))
	require.NoError(t, err)
	assert.Equal(t, float32(15), got)

	_, err = Fixed([]byte("1.5e1"))
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFixed_MatchesStrconv(t *testing.T) {
	for i := -999; i <= 999; i++ {
		s := fmt.Sprintf("%.1f", float64(i)/10)
		want, err := Strconv([]byte(s))
		require.NoError(t, err)
		got, err := Fixed([]byte(s))
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-6, s)
	}
}

func TestFixed_LongInputFallsBack(t *testing.T) {
	got, err := Fixed([]byte("1234567890.1234567"))
	require.NoError(t, err)
	assert.InDelta(t, float32(1234567890.1234567), got, 1)
}

func TestLookup(t *testing.T) {
	f, err := Lookup("")
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = Lookup("lexical")
	assert.Error(t, err)

	assert.Equal(t, []string{NameFixed, NameStrconv}, Names())
}

func BenchmarkFixed(b *testing.B) {
	in := []byte("-12.3")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Fixed(in)
	}
}

func BenchmarkStrconv(b *testing.B) {
	in := []byte("-12.3")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Strconv(in)
	}
}
