package engine

import (
	"fmt"
	"time"

	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// FILTERS — Month / Weekday Filtering via View
// ============================================================================
// Single-pass filter: checks both constraints per record in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// Records with a null Start Time never match a non-empty filter.
// ============================================================================

// ApplyFilters returns a view of records whose Start Time falls in the
// selected month and on the selected weekday.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view View, filters Filters) (View, error) {
	if filters.IsEmpty() {
		return view, nil
	}
	if err := requireColumns(view, schema.StartTime); err != nil {
		return nil, err
	}

	month, err := ParseMonth(filters.Month)
	if err != nil {
		return nil, err
	}
	day, err := ParseWeekday(filters.Day)
	if err != nil {
		return nil, err
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		t, ok := view.Time(i, schema.StartTime)
		if !ok {
			continue
		}
		if month != 0 && t.Month() != month {
			continue
		}
		if day >= 0 && t.Weekday() != day {
			continue
		}
		indices = append(indices, i)
	}

	return NewSubView(view, indices), nil
}

// ParseMonth maps a lowercase month name to its time.Month.
// "" and "all" return 0.
func ParseMonth(name string) (time.Month, error) {
	if isAll(name) {
		return 0, nil
	}
	for i, m := range Months {
		if m == name {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}

// ParseWeekday maps a lowercase day name to its time.Weekday.
// "" and "all" return -1.
func ParseWeekday(name string) (time.Weekday, error) {
	if isAll(name) {
		return -1, nil
	}
	for i, d := range Weekdays {
		if d == name {
			// Weekdays starts on Monday, time.Weekday on Sunday.
			return time.Weekday((i + 1) % 7), nil
		}
	}
	return -1, fmt.Errorf("unknown day %q", name)
}
