package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Counting, and Sorting via View
// ============================================================================
// All functions operate on View — zero-copy access to any data source.
// Groups come out in first-seen order; nulls never form a group.
// ============================================================================

// ValueCounts counts the distinct non-null values of a string column,
// most frequent first. Ties keep first-seen order.
func ValueCounts(view View, column string) ([]Group, error) {
	if err := requireColumns(view, column); err != nil {
		return nil, err
	}
	groups := groupBySingle(view, column)
	SortByCount(groups)
	return groups, nil
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view View, column string) []Group {
	grouped := make(map[string]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key, ok := view.String(i, column)
		if !ok {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key]++
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			Count: grouped[key],
		})
	}
	return groups
}

type pairKey struct{ first, second string }

// groupByPair groups rows on two string columns. Rows where either value is
// null are skipped.
func groupByPair(view View, first, second string) []Group {
	grouped := make(map[pairKey]int)
	order := make([]pairKey, 0)

	for i := 0; i < view.Len(); i++ {
		a, ok := view.String(i, first)
		if !ok {
			continue
		}
		b, ok := view.String(i, second)
		if !ok {
			continue
		}
		key := pairKey{a, b}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key]++
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key.first + " → " + key.second,
			Keys:  []string{key.first, key.second},
			Label: TupleLabel(key.first, key.second),
			Count: grouped[key],
		})
	}
	return groups
}

// FirstValue returns the first non-null value of a string column.
func FirstValue(view View, column string) (string, error) {
	if err := requireColumns(view, column); err != nil {
		return "", err
	}
	for i := 0; i < view.Len(); i++ {
		if s, ok := view.String(i, column); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("%s: %w", column, ErrNoData)
}

// ============================================================================
// INTEGER AGGREGATION
// ============================================================================

// IntSummary returns min, max and mode of the non-null values of an integer
// column. Mode ties resolve to the value encountered first.
func IntSummary(view View, column string) (lo, hi, mode int64, err error) {
	if err := requireColumns(view, column); err != nil {
		return 0, 0, 0, err
	}

	counts := make(map[int64]int)
	var order []int64
	found := false
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Int(i, column)
		if !ok {
			continue
		}
		if !found || v < lo {
			lo = v
		}
		if !found || v > hi {
			hi = v
		}
		found = true
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if !found {
		return 0, 0, 0, fmt.Errorf("%s: %w", column, ErrNoData)
	}

	best := 0
	for _, v := range order {
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}
	return lo, hi, mode, nil
}

// ============================================================================
// SORTING
// ============================================================================

// SortByCount orders groups by count, most frequent first. Sorting is
// stable, so equal counts keep their first-seen order.
func SortByCount(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// TupleLabel renders a pair the way a tuple of strings prints:
// ('Canal St & Adams St', 'Michigan Ave & Oak St').
func TupleLabel(first, second string) string {
	return "(" + quoteLiteral(first) + ", " + quoteLiteral(second) + ")"
}

// quoteLiteral single-quotes s, switching to double quotes when s contains
// a single quote and no double quote.
func quoteLiteral(s string) string {
	quote := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = `"`
	}
	var b strings.Builder
	b.WriteString(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case string(r) == quote:
			b.WriteString(`\` + quote)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(quote)
	return b.String()
}
