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
	"bytes"
	"slices"

	"github.com/cardinalhq/lakeagg/internal/aggregate"
	"github.com/cardinalhq/lakeagg/internal/keytable"
)

// Row is one line of the final report. Key borrows from the input views.
type Row struct {
	Key []byte
	aggregate.Aggregate
}

// Merge folds all tables into the first non-nil one and returns it.
// The other tables are left untouched. Nil tables are skipped; if every
// table is nil an empty table is returned.
func Merge(tables []*keytable.Table) *keytable.Table {
	var merged *keytable.Table
	for _, t := range tables {
		if t == nil {
			continue
		}
		if merged == nil {
			merged = t
			continue
		}
		for key, agg := range t.All() {
			merged.MergeAggregate(key, agg)
		}
	}
	if merged == nil {
		merged = keytable.New(0)
	}
	return merged
}

// Sorted returns the table contents ordered by byte-wise ascending key.
func Sorted(t *keytable.Table) []Row {
	rows := make([]Row, 0, t.Len())
	for key, agg := range t.All() {
		rows = append(rows, Row{Key: key, Aggregate: agg})
	}
	slices.SortFunc(rows, func(a, b Row) int {
		return bytes.Compare(a.Key, b.Key)
	})
	return rows
}
