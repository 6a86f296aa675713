package engine

import "time"

// ============================================================================
// VIEW — Zero-Copy Trip Table Access Interface
// ============================================================================
// The engine never owns the loaded table. It reads through this interface.
//
// Implementations:
//   dataset.Table — Arrow-backed table loaded from CSV / Parquet
//   SliceView     — wraps []Record (tests, ad-hoc data)
//   SubView       — filtered subset (indices into parent, zero-copy)
//
// Accessors return ok=false for nulls, absent columns and type mismatches.
// Callers check HasColumn first to tell "absent" from "null".
// ============================================================================

// View provides indexed, typed access to a trip table.
type View interface {
	Len() int
	HasColumn(name string) bool
	String(index int, column string) (string, bool)
	Time(index int, column string) (time.Time, bool)
	Int(index int, column string) (int64, bool)
}

// ============================================================================
// SLICE VIEW — wraps []Record
// ============================================================================

// Record is a single trip row. A key missing from its map is a null cell.
type Record struct {
	Strings map[string]string
	Times   map[string]time.Time
	Ints    map[string]int64
}

// SliceView wraps a []Record slice as a View.
type SliceView struct {
	records []Record
	columns map[string]bool
}

// NewSliceView creates a View from records. The column set is the explicit
// columns list when given, otherwise every key seen in any record.
func NewSliceView(records []Record, columns ...string) *SliceView {
	v := &SliceView{records: records, columns: make(map[string]bool)}
	if len(columns) > 0 {
		for _, c := range columns {
			v.columns[c] = true
		}
		return v
	}
	for _, r := range records {
		for k := range r.Strings {
			v.columns[k] = true
		}
		for k := range r.Times {
			v.columns[k] = true
		}
		for k := range r.Ints {
			v.columns[k] = true
		}
	}
	return v
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) HasColumn(name string) bool { return v.columns[name] }

func (v *SliceView) String(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.records) {
		return "", false
	}
	s, ok := v.records[i].Strings[key]
	return s, ok
}

func (v *SliceView) Time(i int, key string) (time.Time, bool) {
	if i < 0 || i >= len(v.records) {
		return time.Time{}, false
	}
	t, ok := v.records[i].Times[key]
	return t, ok
}

func (v *SliceView) Int(i int, key string) (int64, bool) {
	if i < 0 || i >= len(v.records) {
		return 0, false
	}
	n, ok := v.records[i].Ints[key]
	return n, ok
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent View.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  View
	indices []int
}

// NewSubView creates a view over the given parent rows, in the given order.
func NewSubView(parent View, indices []int) *SubView {
	return &SubView{parent: parent, indices: indices}
}

// Parent returns the view the indices point into.
func (v *SubView) Parent() View { return v.parent }

// Indices returns the parent row indices of this view.
func (v *SubView) Indices() []int { return v.indices }

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) HasColumn(name string) bool { return v.parent.HasColumn(name) }

func (v *SubView) String(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.indices) {
		return "", false
	}
	return v.parent.String(v.indices[i], key)
}

func (v *SubView) Time(i int, key string) (time.Time, bool) {
	if i < 0 || i >= len(v.indices) {
		return time.Time{}, false
	}
	return v.parent.Time(v.indices[i], key)
}

func (v *SubView) Int(i int, key string) (int64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Int(v.indices[i], key)
}
