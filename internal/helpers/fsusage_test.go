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

//go:build linux || darwin

package helpers

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskUsage(t *testing.T) {
	usage, err := DiskUsage(t.TempDir())
	require.NoError(t, err)
	assert.Greater(t, usage.TotalBytes, uint64(0))
	assert.LessOrEqual(t, usage.FreeBytes, usage.TotalBytes)
	assert.Equal(t, usage.TotalBytes-usage.FreeBytes, usage.UsedBytes)
}

func TestEnsureFreeSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	assert.NoError(t, EnsureFreeSpace(path, 1))
	assert.ErrorContains(t, EnsureFreeSpace(path, math.MaxUint64), "not enough space")

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt")
	assert.NoError(t, EnsureFreeSpace(missing, math.MaxUint64))
}
