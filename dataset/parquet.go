package dataset

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// PARQUET — load and export
// ============================================================================

// LoadParquet reads a Parquet trip file into a Table. Chunked columns are
// concatenated into a single record.
func LoadParquet(ctx context.Context, r parquet.ReaderAtSeeker, name string) (*Table, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, Pool)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()

	cols := make([]arrow.Array, tbl.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		chunks := tbl.Column(i).Data().Chunks()
		switch len(chunks) {
		case 0:
			b := array.NewBuilder(Pool, tbl.Schema().Field(i).Type)
			cols[i] = b.NewArray()
			b.Release()
		case 1:
			chunks[0].Retain()
			cols[i] = chunks[0]
		default:
			merged, err := array.Concatenate(chunks, Pool)
			if err != nil {
				return nil, fmt.Errorf("failed to merge column %q: %w", tbl.Schema().Field(i).Name, err)
			}
			cols[i] = merged
		}
	}

	rec := array.NewRecord(tbl.Schema(), cols, tbl.NumRows())
	defer rec.Release()

	layout := schema.FromArrow(name, tbl.Schema())
	return NewTable(name, layout, rec), nil
}

// WriteParquet writes the table to w as Snappy-compressed Parquet, storing
// the Arrow schema so timestamps round-trip with their unit.
func WriteParquet(w io.Writer, t *Table) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(t.record.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := writer.Write(t.record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
