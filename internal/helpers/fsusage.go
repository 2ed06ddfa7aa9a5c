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

package helpers

import (
	"fmt"
	"path/filepath"
)

// FSUsage holds the byte usage of a filesystem. FreeBytes counts what is
// available to non-root users.
type FSUsage struct {
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
}

// EnsureFreeSpace returns an error when the filesystem holding path has
// fewer than need bytes available. Filesystems that cannot be queried are
// assumed to have room.
func EnsureFreeSpace(path string, need uint64) error {
	usage, err := DiskUsage(filepath.Dir(path))
	if err != nil {
		return nil
	}
	if usage.FreeBytes < need {
		return fmt.Errorf("not enough space for %s: need about %d bytes, %d available", path, need, usage.FreeBytes)
	}
	return nil
}
