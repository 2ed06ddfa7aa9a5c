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

// Package valueparse provides the numeric parsers used for the value field.
// Every parser accepts standard decimal text with an optional sign; they
// differ in speed and in how much else they accept.
package valueparse

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unsafe"
)

// Func parses a value field. The input slice is borrowed and must not be
// retained.
type Func func(b []byte) (float32, error)

// ErrSyntax is returned when the input is not a decimal number.
var ErrSyntax = errors.New("invalid decimal value")

const (
	NameStrconv = "strconv"
	NameFixed   = "fixed"

	// DefaultName is the parser used when none is configured.
	DefaultName = NameFixed
)

var registry = map[string]Func{
	NameStrconv: Strconv,
	NameFixed:   Fixed,
}

// Lookup returns the parser registered under name. An empty name selects
// DefaultName.
func Lookup(name string) (Func, error) {
	if name == "" {
		name = DefaultName
	}
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown value parser %q (available: %v)", name, Names())
	}
	return f, nil
}

// Names returns the registered parser names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// bytesToString views b as a string without copying.
func bytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Strconv parses with strconv.ParseFloat at 32-bit precision. It is strict
// and correctly rounded, and accepts decimal exponents. Special values
// ("inf", "nan") and hex floats are rejected.
func Strconv(b []byte) (float32, error) {
	if !isDecimal(b) {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, b)
	}
	v, err := strconv.ParseFloat(bytesToString(b), 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return float32(v), nil
}

// isDecimal reports whether b only holds characters of decimal float text.
func isDecimal(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return true
}

// maxFixedDigits keeps the mantissa exactly representable in a float64.
const maxFixedDigits = 15

var pow10 = [...]float64{1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12, 1e13, 1e14, 1e15}

// Fixed parses plain decimals of the form [+-]digits[.digits] without going
// through strconv. Inputs with more than maxFixedDigits digits are handed to
// Strconv.
func Fixed(b []byte) (float32, error) {
	i := 0
	neg := false
	if len(b) > 0 && (b[0] == '-' || b[0] == '+') {
		neg = b[0] == '-'
		i++
	}

	var mant uint64
	digits := 0
	frac := -1
	for ; i < len(b); i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			mant = mant*10 + uint64(c-'0')
			digits++
			if frac >= 0 {
				frac++
			}
		case c == '.' && frac < 0:
			frac = 0
		default:
			return 0, fmt.Errorf("%w: %q", ErrSyntax, b)
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, b)
	}
	if digits > maxFixedDigits {
		return Strconv(b)
	}

	v := float64(mant)
	if frac > 0 {
		v /= pow10[frac]
	}
	if neg {
		v = -v
	}
	return float32(v), nil
}
