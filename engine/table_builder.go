package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from value-count Groups
// ============================================================================

// BuildCountTable produces a two-column (value, count) table from groups,
// keeping their order. Title is the counted column's name.
func BuildCountTable(title string, groups []Group) *TableData {
	table := &TableData{
		Title: title,
		Columns: []Column{
			{Key: "value", Label: title, Type: "text", Align: "left"},
			{Key: "count", Label: "Count", Type: "number", Align: "right"},
		},
		Rows: make([][]string, 0, len(groups)),
	}

	total := 0
	for _, g := range groups {
		table.Rows = append(table.Rows, []string{g.Label, strconv.Itoa(g.Count)})
		total += g.Count
	}

	table.Summary = &Summary{
		Label:  "Total",
		Values: map[string]string{"count": FormatInt(total)},
	}
	return table
}
