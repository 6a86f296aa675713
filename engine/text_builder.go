package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ============================================================================
// TEXT BUILDER — Plain-text renderings of statistics values
// ============================================================================

// FormatDuration renders whole seconds as "H:MM:SS", prefixed with
// "N day, " / "N days, " once the total reaches a day.
func FormatDuration(seconds int64) string {
	negative := seconds < 0
	if negative {
		seconds = -seconds
	}

	days := seconds / secondsPerDay
	rem := seconds % secondsPerDay
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, rem%3600/60, rem%60)

	var out string
	switch days {
	case 0:
		out = clock
	case 1:
		out = "1 day, " + clock
	default:
		out = fmt.Sprintf("%d days, %s", days, clock)
	}
	if negative {
		out = "-" + out
	}
	return out
}

// FormatCounts renders a count table as an aligned two-column listing
// followed by a "Name: <title>, dtype: int64" footer:
//
//	Subscriber    3
//	Customer      1
//	Name: User Type, dtype: int64
func FormatCounts(table *TableData) string {
	var b strings.Builder

	labelWidth, countWidth := 0, 0
	for _, row := range table.Rows {
		if len(row) < 2 {
			continue
		}
		labelWidth = maxInt(labelWidth, utf8.RuneCountInString(row[0]))
		countWidth = maxInt(countWidth, len(row[1]))
	}

	for _, row := range table.Rows {
		if len(row) < 2 {
			continue
		}
		pad := labelWidth - utf8.RuneCountInString(row[0])
		b.WriteString(row[0])
		b.WriteString(strings.Repeat(" ", pad+4))
		b.WriteString(fmt.Sprintf("%*s", countWidth, row[1]))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "Name: %s, dtype: int64", table.Title)
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
