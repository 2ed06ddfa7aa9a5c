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

package debug

import (
	"bytes"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/lakeagg/internal/bytesource"
	"github.com/cardinalhq/lakeagg/internal/partition"
)

func GetPartitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Show how an input file would be split between workers",
		RunE: func(c *cobra.Command, _ []string) error {
			filename, err := c.Flags().GetString("file")
			if err != nil {
				return fmt.Errorf("failed to get file flag: %w", err)
			}

			workers, err := c.Flags().GetInt("workers")
			if err != nil {
				return fmt.Errorf("failed to get workers flag: %w", err)
			}

			return runPartition(c.OutOrStdout(), filename, workers)
		},
	}

	cmd.Flags().String("file", "", "Input file to split")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Errorf("failed to mark file flag as required: %w", err))
	}
	cmd.Flags().Int("workers", 0, "Number of ranges (0 for GOMAXPROCS)")

	return cmd
}

func runPartition(w io.Writer, filename string, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	src, err := bytesource.Open(filename, bytesource.ModeMmap)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	data := src.Bytes()
	for i, r := range partition.Split(data, workers) {
		lines := bytes.Count(data[r.Start:r.End], []byte{partition.Separator})
		if !r.Empty() && data[r.End-1] != partition.Separator {
			lines++
		}
		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n", i, r.Start, r.End, r.Len(), lines); err != nil {
			return err
		}
	}
	return nil
}
