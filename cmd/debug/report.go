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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/lakeagg/internal/report"
)

func GetReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report file debugging utilities",
	}

	cmd.AddCommand(getReportCatSubCmd())

	return cmd
}

func getReportCatSubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat",
		Short: "Output a binary report as JSON lines",
		Long:  `Reads a report written in a binary format and outputs each row as a JSON line.`,
		RunE: func(c *cobra.Command, _ []string) error {
			filename, err := c.Flags().GetString("file")
			if err != nil {
				return fmt.Errorf("failed to get file flag: %w", err)
			}

			format, err := c.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}

			limit, err := c.Flags().GetInt("limit")
			if err != nil {
				return fmt.Errorf("failed to get limit flag: %w", err)
			}

			return runReportCat(c.OutOrStdout(), filename, format, limit)
		},
	}

	cmd.Flags().String("file", "", "Report file to read")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Errorf("failed to mark file flag as required: %w", err))
	}

	cmd.Flags().String("format", "", "Report format: parquet, cbor or arrow (default from the file extension)")
	cmd.Flags().Int("limit", 0, "Maximum number of rows to output (0 for unlimited)")

	return cmd
}

func formatFromName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cbor":
		return report.FormatCBOR
	case ".arrow", ".arrows":
		return report.FormatArrow
	default:
		return report.FormatParquet
	}
}

func readReport(filename, format string) ([]report.Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	if format == "" {
		format = formatFromName(filename)
	}

	switch format {
	case report.FormatCBOR:
		return report.DecodeCBOR(file)
	case report.FormatArrow:
		return report.DecodeArrow(file)
	case report.FormatParquet:
		stat, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat file %s: %w", filename, err)
		}
		return report.DecodeParquet(file, stat.Size())
	default:
		return nil, fmt.Errorf("cannot read %q reports", format)
	}
}

func runReportCat(w io.Writer, filename, format string, limit int) error {
	recs, err := readReport(filename, format)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}

	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("error marshaling row to JSON: %w", err)
		}
	}
	return nil
}
