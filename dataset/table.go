package dataset

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/spektr-org/bikeshare/engine"
	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// TABLE — Arrow-backed trip table
// ============================================================================
// A Table owns one arrow.Record. It is read-only after construction and
// implements engine.View directly, so statistics read column buffers without
// copying rows. Call Release when the session cycle ends.
// ============================================================================

// Pool is the allocator for every array the package builds.
var Pool = memory.NewGoAllocator()

// Table is a loaded trip dataset.
type Table struct {
	name   string
	layout *schema.Config
	record arrow.Record
	index  map[string]int
}

var _ engine.View = (*Table)(nil)

// NewTable wraps rec. The table takes its own reference on rec.
func NewTable(name string, layout *schema.Config, rec arrow.Record) *Table {
	rec.Retain()
	t := &Table{
		name:   name,
		layout: layout,
		record: rec,
		index:  make(map[string]int, rec.NumCols()),
	}
	for i, f := range rec.Schema().Fields() {
		t.index[f.Name] = i
	}
	return t
}

// Name returns the dataset name (usually the city).
func (t *Table) Name() string { return t.name }

// Layout returns the column layout the table was built from.
func (t *Table) Layout() *schema.Config { return t.layout }

// Record returns the underlying Arrow record. It stays valid until Release.
func (t *Table) Record() arrow.Record { return t.record }

// Columns returns the column names in file order.
func (t *Table) Columns() []string { return t.layout.ColumnNames() }

// Retain adds a reference to the underlying record.
func (t *Table) Retain() { t.record.Retain() }

// Release drops a reference to the underlying record.
func (t *Table) Release() { t.record.Release() }

func (t *Table) Len() int { return int(t.record.NumRows()) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) column(name string, i int) (arrow.Array, bool) {
	idx, ok := t.index[name]
	if !ok || i < 0 || i >= t.Len() {
		return nil, false
	}
	col := t.record.Column(idx)
	if col.IsNull(i) {
		return nil, false
	}
	return col, true
}

func (t *Table) String(i int, name string) (string, bool) {
	col, ok := t.column(name, i)
	if !ok {
		return "", false
	}
	switch c := col.(type) {
	case *array.String:
		return c.Value(i), true
	case *array.LargeString:
		return c.Value(i), true
	}
	return "", false
}

func (t *Table) Time(i int, name string) (time.Time, bool) {
	col, ok := t.column(name, i)
	if !ok {
		return time.Time{}, false
	}
	switch c := col.(type) {
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(i).ToTime(unit), true
	case *array.Date32:
		return c.Value(i).ToTime(), true
	case *array.Date64:
		return c.Value(i).ToTime(), true
	}
	return time.Time{}, false
}

func (t *Table) Int(i int, name string) (int64, bool) {
	col, ok := t.column(name, i)
	if !ok {
		return 0, false
	}
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(i), true
	case *array.Int32:
		return int64(c.Value(i)), true
	case *array.Int16:
		return int64(c.Value(i)), true
	case *array.Float64:
		// Float-encoded years ("1989.0") from dataframe exports.
		v := c.Value(i)
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// ============================================================================
// TAKE — Materialize a row subset
// ============================================================================

// Take builds a new table holding the given rows, in the given order.
func (t *Table) Take(indices []int) (*Table, error) {
	rb := array.NewRecordBuilder(Pool, t.record.Schema())
	defer rb.Release()

	for c := 0; c < int(t.record.NumCols()); c++ {
		col := t.record.Column(c)
		b := rb.Field(c)
		b.Reserve(len(indices))
		for _, row := range indices {
			if row < 0 || row >= t.Len() {
				return nil, fmt.Errorf("take: row %d out of range [0, %d)", row, t.Len())
			}
			if err := appendValue(b, col, row); err != nil {
				return nil, fmt.Errorf("take: column %q: %w", t.record.ColumnName(c), err)
			}
		}
	}

	rec := rb.NewRecord()
	defer rec.Release()
	return NewTable(t.name, t.layout, rec), nil
}

// Materialize returns a table holding exactly the rows of view. view must be
// a *Table or an *engine.SubView over one. The caller releases the result.
func Materialize(view engine.View) (*Table, error) {
	switch v := view.(type) {
	case *Table:
		v.Retain()
		return v, nil
	case *engine.SubView:
		parent, ok := v.Parent().(*Table)
		if !ok {
			return nil, fmt.Errorf("materialize: sub-view parent is %T, not a table", v.Parent())
		}
		return parent.Take(v.Indices())
	}
	return nil, fmt.Errorf("materialize: unsupported view %T", view)
}

// appendValue appends a typed value from an Arrow array to a builder.
func appendValue(builder array.Builder, col arrow.Array, pos int) error {
	if col.IsNull(pos) {
		builder.AppendNull()
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		builder.(*array.StringBuilder).Append(c.Value(pos))
	case *array.LargeString:
		builder.(*array.LargeStringBuilder).Append(c.Value(pos))
	case *array.Int64:
		builder.(*array.Int64Builder).Append(c.Value(pos))
	case *array.Int32:
		builder.(*array.Int32Builder).Append(c.Value(pos))
	case *array.Int16:
		builder.(*array.Int16Builder).Append(c.Value(pos))
	case *array.Float64:
		builder.(*array.Float64Builder).Append(c.Value(pos))
	case *array.Float32:
		builder.(*array.Float32Builder).Append(c.Value(pos))
	case *array.Boolean:
		builder.(*array.BooleanBuilder).Append(c.Value(pos))
	case *array.Timestamp:
		builder.(*array.TimestampBuilder).Append(c.Value(pos))
	case *array.Date32:
		builder.(*array.Date32Builder).Append(c.Value(pos))
	case *array.Date64:
		builder.(*array.Date64Builder).Append(c.Value(pos))
	default:
		return fmt.Errorf("unsupported type %s", col.DataType())
	}
	return nil
}
