package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// CSV LOADER — header + sample → layout, then rows → Arrow builders
// ============================================================================

// SampleRows is how many leading rows drive column type discovery.
const SampleRows = 1000

// checkEvery is how often (in rows) the loader polls the context.
const checkEvery = 4096

// ParseError reports a cell that does not match its column type.
type ParseError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadCSV reads a comma-separated trip file with a header row into a Table.
// Short rows are padded with nulls. A cell that does not parse fails the load
// only in a trip column; in any other column it is stored as null.
func LoadCSV(ctx context.Context, r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty CSV: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	sample := make([][]string, 0, SampleRows)
	for len(sample) < SampleRows {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(sample)+1, err)
		}
		sample = append(sample, row)
	}

	layout, err := schema.Discover(headers, sample, schema.DiscoverOptions{SampleSize: SampleRows, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to discover layout: %w", err)
	}
	layout.DiscoveredFrom = "CSV"

	rb := array.NewRecordBuilder(Pool, layout.ArrowSchema())
	defer rb.Release()

	rowNum := 0
	appendRow := func(row []string) error {
		rowNum++
		for c, col := range layout.Columns {
			raw := ""
			if c < len(row) {
				raw = row[c]
			}
			if err := appendCell(rb.Field(c), col.Type, raw); err != nil {
				if !col.Known {
					rb.Field(c).AppendNull()
					continue
				}
				return &ParseError{Row: rowNum, Column: col.Name, Value: raw, Err: err}
			}
		}
		return nil
	}

	for _, row := range sample {
		if err := appendRow(row); err != nil {
			return nil, err
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum+1, err)
		}
		if err := appendRow(row); err != nil {
			return nil, err
		}
		if rowNum%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	rec := rb.NewRecord()
	defer rec.Release()
	return NewTable(name, layout, rec), nil
}

// appendCell parses raw as typ and appends it. Null-like cells become nulls.
func appendCell(b array.Builder, typ schema.ColumnType, raw string) error {
	if schema.IsNull(raw) {
		b.AppendNull()
		return nil
	}

	switch typ {
	case schema.TypeTimestamp:
		t, err := schema.ParseTimestamp(raw)
		if err != nil {
			return err
		}
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UnixMilli()))
	case schema.TypeInteger:
		n, err := schema.ParseInteger(raw)
		if err != nil {
			return err
		}
		b.(*array.Int64Builder).Append(n)
	case schema.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return err
		}
		b.(*array.Float64Builder).Append(f)
	default:
		b.(*array.StringBuilder).Append(raw)
	}
	return nil
}
