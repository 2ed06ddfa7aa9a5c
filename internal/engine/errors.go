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

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSeparator means a record has no field delimiter.
	ErrNoSeparator = errors.New("record has no field separator")

	// ErrWorkerFailed wraps an unexpected failure inside a worker. It is
	// fatal to the whole run.
	ErrWorkerFailed = errors.New("aggregation worker failed")

	// ErrViewMismatch means an independent view of the input did not have
	// the same length as the view used for partitioning.
	ErrViewMismatch = errors.New("input views differ in length")
)

// MalformedRecordError describes one record that was skipped.
// It is recoverable and never stops a run.
type MalformedRecordError struct {
	// Offset is the absolute byte offset of the record in the input.
	Offset int64
	// Line is a copy of the record text.
	Line string
	// Err is ErrNoSeparator or the error returned by the value parser.
	Err error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at offset %d %q: %v", e.Offset, e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
