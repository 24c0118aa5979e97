package domain

import (
	"cmp"
	"slices"
)

// RankedTable is a table's rows ordered by one metric, highest first.
type RankedTable struct {
	Metric Metric         `json:"metric"`
	Rows   []AggregateRow `json:"rows"`
}

// Rank sorts the table's rows by metric in descending order and keeps the
// first topN. Equal values keep their table order. topN <= 0 yields no rows.
func Rank(t *Table, metric Metric, topN int) RankedTable {
	ranked := RankedTable{Metric: metric, Rows: []AggregateRow{}}
	if topN <= 0 || t.Len() == 0 {
		return ranked
	}

	rows := t.Rows()
	slices.SortStableFunc(rows, func(a, b AggregateRow) int {
		return cmp.Compare(b.Value(metric), a.Value(metric))
	})

	if topN < len(rows) {
		rows = rows[:topN]
	}
	ranked.Rows = rows
	return ranked
}
