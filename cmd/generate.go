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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/lakeagg/config"
	"github.com/cardinalhq/lakeagg/internal/helpers"
	"github.com/cardinalhq/lakeagg/internal/synth"
)

const defaultGenerateRows = 1_000_000

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic measurements file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			rows, err := c.Flags().GetInt("rows")
			if err != nil {
				return fmt.Errorf("failed to get rows flag: %w", err)
			}
			output, err := c.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("failed to get output flag: %w", err)
			}
			seed, err := c.Flags().GetInt64("seed")
			if err != nil {
				return fmt.Errorf("failed to get seed flag: %w", err)
			}

			_, doneFx, err := setupTelemetry("lakeagg-generate")
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() { _ = doneFx() }()

			return runGenerate(output, rows, seed, c.OutOrStdout())
		},
	}

	rootCmd.AddCommand(cmd)

	cmd.Flags().IntP("rows", "n", defaultGenerateRows, "Number of records to write")
	cmd.Flags().StringP("output", "o", config.DefaultInputFile, "Output path, or - for stdout")
	cmd.Flags().Int64("seed", synth.DefaultSeed, "Random seed")
}

func runGenerate(output string, rows int, seed int64, stdout io.Writer) (err error) {
	if rows < 0 {
		return errors.New("rows must not be negative")
	}

	start := time.Now()
	gen := synth.NewGenerator(seed)

	if output == "-" {
		return gen.Write(stdout, rows)
	}

	if err := helpers.EnsureFreeSpace(output, estimateSize(seed, rows)); err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", output, cerr)
		}
	}()

	if err := gen.Write(f, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	slog.Info("Generated measurements",
		slog.String("path", output),
		slog.Int("rows", rows),
		slog.Int64("seed", seed),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// estimateSize extrapolates the output size from a sample of records.
func estimateSize(seed int64, rows int) uint64 {
	const sampleRows = 1000
	sample := synth.NewGenerator(seed).Bytes(sampleRows)
	return uint64(len(sample)) * uint64(rows) / sampleRows
}
