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

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/lakeagg/config"
	"github.com/cardinalhq/lakeagg/internal/bytesource"
	"github.com/cardinalhq/lakeagg/internal/report"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "measurements.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(path string) config.AggregateConfig {
	cfg := config.DefaultAggregateConfig()
	cfg.File = path
	cfg.QuietMalformed = true
	return cfg
}

func TestRunAggregate_Text(t *testing.T) {
	for _, source := range []string{"mmap", "read"} {
		t.Run(source, func(t *testing.T) {
			cfg := testConfig(writeInput(t, "Hamburg;12.0\nBerlin;5.5\nHamburg;8.0\n"))
			cfg.Workers = 3
			cfg.Source = source

			var out bytes.Buffer
			require.NoError(t, runAggregate(context.Background(), cfg, &out))
			assert.Equal(t, "Berlin min 5.5 max 5.5 mean 5.5\nHamburg min 8.0 max 12.0 mean 10.0\n", out.String())
		})
	}
}

func TestRunAggregate_SkipsMalformed(t *testing.T) {
	cfg := testConfig(writeInput(t, "Paris;nope\nParis;3.0\n"))
	cfg.Format = report.Format1BRC
	cfg.PerWorkerViews = true
	cfg.Workers = 2

	var out bytes.Buffer
	require.NoError(t, runAggregate(context.Background(), cfg, &out))
	assert.Equal(t, "{Paris=3.0/3.0/3.0}\n", out.String())
}

func TestRunAggregate_ParquetFile(t *testing.T) {
	cfg := testConfig(writeInput(t, "Hamburg;12.0\nBerlin;5.5\nHamburg;8.0\n"))
	cfg.Format = report.FormatParquet
	cfg.Output = filepath.Join(t.TempDir(), "report.parquet")

	var out bytes.Buffer
	require.NoError(t, runAggregate(context.Background(), cfg, &out))
	assert.Zero(t, out.Len())

	f, err := os.Open(cfg.Output)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	require.NoError(t, err)

	recs, err := report.DecodeParquet(f, st.Size())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Berlin", recs[0].Key)
	assert.Equal(t, "Hamburg", recs[1].Key)
	assert.Equal(t, uint64(2), recs[1].Count)
	assert.InDelta(t, 10.0, recs[1].Mean, 1e-6)
}

func TestRunAggregate_MissingFile(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.txt"))

	var out bytes.Buffer
	err := runAggregate(context.Background(), cfg, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, bytesource.ErrOpen)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, out.Len())
}

func TestRunAggregate_OutputFileRemovedOnFailure(t *testing.T) {
	cfg := testConfig(writeInput(t, "A;1.0\n"))
	cfg.Output = filepath.Join(t.TempDir(), "missing-dir", "report.txt")

	err := runAggregate(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	_, statErr := os.Stat(cfg.Output)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunAggregate_Cancelled(t *testing.T) {
	cfg := testConfig(writeInput(t, strings.Repeat("Oslo;1.0\n", 200_000)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runAggregate(ctx, cfg, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestApplyAggregateFlags(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"aggregate"})
	require.NoError(t, err)
	require.Equal(t, "aggregate", c.Name())

	cfg := config.DefaultAggregateConfig()
	cfg.Format = report.FormatJSON
	cfg.Workers = 8

	require.NoError(t, c.Flags().Set("workers", "3"))
	require.NoError(t, c.Flags().Set("per-worker-views", "true"))
	require.NoError(t, applyAggregateFlags(c, &cfg))

	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.PerWorkerViews)
	assert.Equal(t, report.FormatJSON, cfg.Format, "unset flags keep config values")
}
