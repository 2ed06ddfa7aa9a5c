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

//go:build unix

package bytesource

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// mappedSource is a Source backed by a private read-only mapping.
type mappedSource struct {
	data []byte
}

func (m *mappedSource) Bytes() []byte { return m.data }
func (m *mappedSource) Len() int      { return len(m.data) }

func (m *mappedSource) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return unix.Munmap(data)
}

func openMapped(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	// the mapping stays valid after the descriptor is closed
	defer func() {
		_ = f.Close()
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	size := fi.Size()
	if size == 0 {
		// zero-length mappings are rejected by the kernel
		return &memSource{}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("%w %s: size %d exceeds address space", ErrMap, path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMap, path, err)
	}

	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		slog.Debug("madvise failed, continuing", slog.String("path", path), slog.Any("error", err))
	}

	return &mappedSource{data: data}, nil
}
