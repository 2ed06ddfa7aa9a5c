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

// Package bytesource provides read-only, random-access byte views over an
// input file. The bytes returned by Bytes stay valid until Close.
package bytesource

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrOpen wraps failures to open or stat the input file.
	ErrOpen = errors.New("unable to open input")
	// ErrMap wraps failures to establish a read-only mapping.
	ErrMap = errors.New("unable to map input")
)

// Source is an immutable view over the whole input file.
type Source interface {
	// Bytes returns the full contents. The slice must not be modified and
	// is only valid until Close.
	Bytes() []byte
	// Len returns the number of bytes in the view.
	Len() int
	// Close releases the backing resource.
	Close() error
}

// Mode selects how a Source is backed.
type Mode string

const (
	// ModeMmap memory-maps the file read-only.
	ModeMmap Mode = "mmap"
	// ModeRead reads the whole file into memory.
	ModeRead Mode = "read"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMmap:
		return ModeMmap, nil
	case ModeRead:
		return ModeRead, nil
	default:
		return "", fmt.Errorf("unknown source mode %q (want %q or %q)", s, ModeMmap, ModeRead)
	}
}

// Opener opens a new Source over the same input each time it is called.
type Opener func() (Source, error)

// FileOpener returns an Opener for path using mode.
func FileOpener(path string, mode Mode) Opener {
	return func() (Source, error) {
		return Open(path, mode)
	}
}

// BytesOpener returns an Opener that serves data from memory. Every call
// shares the same backing array.
func BytesOpener(data []byte) Opener {
	return func() (Source, error) {
		return &memSource{data: data}, nil
	}
}

// Open opens path as a Source.
func Open(path string, mode Mode) (Source, error) {
	switch mode {
	case ModeRead:
		return openRead(path)
	case ModeMmap, "":
		return openMapped(path)
	default:
		return nil, fmt.Errorf("unknown source mode %q", mode)
	}
}

// memSource is a Source backed by a heap buffer.
type memSource struct {
	data []byte
}

func (m *memSource) Bytes() []byte { return m.data }
func (m *memSource) Len() int      { return len(m.data) }

func (m *memSource) Close() error {
	m.data = nil
	return nil
}

func openRead(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	return &memSource{data: data}, nil
}
