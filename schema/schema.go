package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// ============================================================================
// SCHEMA — Describes the column layout of a trip file
// ============================================================================
// Discovered from the header and a sample of rows (CSV) or read straight from
// an Arrow schema (Parquet). The dataset package builds its Arrow record from
// Config.ArrowSchema(); the engine looks columns up by their CSV header name.
// ============================================================================

// Trip columns referenced by the statistics reports.
const (
	StartTime    = "Start Time"
	EndTime      = "End Time"
	StartStation = "Start Station"
	EndStation   = "End Station"
	UserType     = "User Type"
	Gender       = "Gender"
	BirthYear    = "Birth Year"
	TripDuration = "Trip Duration"
)

// unnamedPrefix names header cells that are blank (the exported row index).
const unnamedPrefix = "Unnamed: "

// ColumnType is the logical type a column is loaded as.
type ColumnType string

const (
	TypeString    ColumnType = "string"
	TypeTimestamp ColumnType = "timestamp"
	TypeInteger   ColumnType = "integer"
	TypeFloat     ColumnType = "float"
)

// Config describes the complete column layout of a trip file.
type Config struct {
	Name    string       `json:"name"`
	Columns []ColumnMeta `json:"columns"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`
	SampledRows    int    `json:"sampledRows,omitempty"`
}

// ColumnMeta describes one column.
type ColumnMeta struct {
	Name         string     `json:"name"`
	Key          string     `json:"key"`
	DisplayName  string     `json:"displayName"`
	Type         ColumnType `json:"type"`
	Known        bool       `json:"known"` // one of the trip columns with a fixed type
	NullCount    int        `json:"nullCount"`
	SampleValues []string   `json:"sampleValues,omitempty"`
}

// knownTypes fixes the type of trip columns regardless of what the sample shows.
// Birth Year is exported as "1989.0" by some cities but is a year.
var knownTypes = map[string]ColumnType{
	StartTime:    TypeTimestamp,
	EndTime:      TypeTimestamp,
	StartStation: TypeString,
	EndStation:   TypeString,
	UserType:     TypeString,
	Gender:       TypeString,
	BirthYear:    TypeInteger,
}

// ColumnNames returns the column names in file order.
func (c Config) ColumnNames() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether the layout contains the named column.
func (c Config) Has(name string) bool {
	_, ok := c.Column(name)
	return ok
}

// Column returns the metadata of the named column.
func (c Config) Column(name string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnMeta{}, false
}

// ArrowType maps a logical column type to its Arrow storage type.
func (t ColumnType) ArrowType() arrow.DataType {
	switch t {
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms
	case TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case TypeFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// ArrowSchema builds the Arrow schema used to store a table with this layout.
// Every field is nullable; blank cells are stored as nulls.
func (c Config) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(c.Columns))
	for i, col := range c.Columns {
		fields[i] = arrow.Field{Name: col.Name, Type: col.Type.ArrowType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// FromArrow derives a layout from an existing Arrow schema (Parquet input).
func FromArrow(name string, s *arrow.Schema) *Config {
	cfg := &Config{Name: name, DiscoveredFrom: "Parquet"}
	for _, f := range s.Fields() {
		col := ColumnMeta{
			Name:        f.Name,
			Key:         toSnakeCase(f.Name),
			DisplayName: toDisplayName(f.Name),
			Type:        fromArrowType(f.Type),
		}
		_, col.Known = knownTypes[f.Name]
		cfg.Columns = append(cfg.Columns, col)
	}
	return cfg
}

func fromArrowType(dt arrow.DataType) ColumnType {
	switch dt.ID() {
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return TypeTimestamp
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return TypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return TypeFloat
	default:
		return TypeString
	}
}
