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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "measurements.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpen_Modes(t *testing.T) {
	content := "Hamburg;12.0\nBerlin;5.5\n"
	path := writeFile(t, content)

	for _, mode := range []Mode{ModeMmap, ModeRead} {
		t.Run(string(mode), func(t *testing.T) {
			src, err := Open(path, mode)
			require.NoError(t, err)

			assert.Equal(t, len(content), src.Len())
			assert.Equal(t, content, string(src.Bytes()))

			require.NoError(t, src.Close())
			require.NoError(t, src.Close(), "second close is a no-op")
		})
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeFile(t, "")
	src, err := Open(path, ModeMmap)
	require.NoError(t, err)
	assert.Equal(t, 0, src.Len())
	assert.Empty(t, src.Bytes())
	require.NoError(t, src.Close())
}

func TestOpen_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")
	for _, mode := range []Mode{ModeMmap, ModeRead} {
		_, err := Open(missing, mode)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOpen), "mode %s: %v", mode, err)
		assert.True(t, errors.Is(err, os.ErrNotExist), "mode %s: %v", mode, err)
	}
}

func TestOpen_UnknownMode(t *testing.T) {
	_, err := Open("whatever", Mode("tape"))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeMmap, false},
		{"mmap", ModeMmap, false},
		{" MMAP ", ModeMmap, false},
		{"read", ModeRead, false},
		{"stream", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBytesOpener_SharesBacking(t *testing.T) {
	data := []byte("a;1.0\n")
	opener := BytesOpener(data)

	a, err := opener()
	require.NoError(t, err)
	b, err := opener()
	require.NoError(t, err)
	assert.Same(t, &a.Bytes()[0], &b.Bytes()[0])
}

type closeErrSource struct {
	memSource
	closed int
}

func (c *closeErrSource) Close() error {
	c.closed++
	return errors.New("boom")
}

func TestViews_Close(t *testing.T) {
	var v Views
	ok, err := v.Open(BytesOpener([]byte("x;1.0")))
	require.NoError(t, err)
	bad := &closeErrSource{}
	v.Add(bad)
	assert.Equal(t, 2, v.Len())

	err = v.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error releasing view 1")
	assert.Nil(t, ok.Bytes(), "owned sources are released")
	assert.Equal(t, 1, bad.closed)

	require.NoError(t, v.Close())
	assert.Equal(t, 1, bad.closed, "sources are released only once")
}

func TestViews_OpenError(t *testing.T) {
	var v Views
	_, err := v.Open(FileOpener(filepath.Join(t.TempDir(), "missing"), ModeRead))
	require.Error(t, err)
	assert.Equal(t, 0, v.Len())
}
