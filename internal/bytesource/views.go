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

package bytesource

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Views owns every Source that table keys may borrow from. All of them are
// released together by Close, which must only be called once nothing reads
// the borrowed bytes anymore.
type Views struct {
	mu      sync.Mutex
	sources []Source
	closed  bool
}

// Add takes ownership of s.
func (v *Views) Add(s Source) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sources = append(v.sources, s)
}

// Open opens a new Source with opener and takes ownership of it.
func (v *Views) Open(opener Opener) (Source, error) {
	s, err := opener()
	if err != nil {
		return nil, err
	}
	v.Add(s)
	return s, nil
}

// Len returns the number of owned sources.
func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.sources)
}

// Close releases every owned Source. It is safe to call more than once.
func (v *Views) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true

	var errs *multierror.Error
	for i, s := range v.sources {
		if err := s.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("error releasing view %d: %w", i, err))
		}
	}
	v.sources = nil
	return errs.ErrorOrNil()
}
