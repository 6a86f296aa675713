package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ============================================================================
// AUTO-DISCOVERY — Column layout from header + sampled rows
// ============================================================================
// Trip columns (Start Time, Gender, Birth Year, ...) have fixed types.
// Any other column is classified from a sample of its values:
//   1. Blank / null-like cells are counted and skipped
//   2. All timestamps → timestamp, all numeric → float, else string
//   3. Blank headers become "Unnamed: <index>"
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max rows to inspect (0 = up to 100000)
	Name       string // Dataset name
}

// DiscoverFromReader reads the header and up to SampleSize rows from r.
func DiscoverFromReader(r io.Reader, opt DiscoverOptions) (*Config, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	limit := opt.SampleSize
	if limit <= 0 {
		limit = 100000 // safety cap
	}

	var rows [][]string
	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	return Discover(headers, rows, opt)
}

// Discover classifies every column from its header and sampled rows.
func Discover(headers []string, rows [][]string, opt DiscoverOptions) (*Config, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	cfg := &Config{
		Name:           opt.Name,
		DiscoveredFrom: "CSV",
		DiscoveredAt:   time.Now().Format(time.RFC3339),
		SampledRows:    len(rows),
	}
	if cfg.Name == "" {
		cfg.Name = "Trip Dataset"
	}

	seen := make(map[string]bool, len(headers))
	for i, header := range headers {
		col := analyzeColumn(header, i, rows)
		if seen[col.Name] {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[col.Name] = true
		cfg.Columns = append(cfg.Columns, col)
	}

	return cfg, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

// analyzeColumn inspects sampled values in a column and classifies it.
func analyzeColumn(header string, index int, rows [][]string) ColumnMeta {
	name := ColumnName(header, index)
	col := ColumnMeta{
		Name:        name,
		Key:         toSnakeCase(name),
		DisplayName: toDisplayName(name),
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) || IsNull(row[index]) {
			col.NullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		values = append(values, val)
		uniqueSet[val] = true
	}
	col.SampleValues = collectSamples(uniqueSet, 5)

	if t, ok := knownTypes[name]; ok {
		col.Type = t
		col.Known = true
		return col
	}
	col.Type = detectType(values)
	return col
}

// ColumnName normalizes a header cell. Blank headers get a positional name.
func ColumnName(header string, index int) string {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return unnamedPrefix + strconv.Itoa(index)
	}
	return header
}

// IsNull reports whether a raw cell is treated as missing.
func IsNull(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "NULL", "NaN", "nan", "N/A", "n/a":
		return true
	}
	return false
}

// detectType inspects values to determine column type. A single value that
// does not parse keeps the column a string.
func detectType(values []string) ColumnType {
	if len(values) == 0 {
		return TypeString
	}

	numCount := 0
	dateCount := 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if _, err := ParseTimestamp(v); err == nil {
			dateCount++
		}
	}

	if dateCount == len(values) {
		return TypeTimestamp
	}
	if numCount == len(values) {
		return TypeFloat
	}
	return TypeString
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// timestampFormats are tried in order. All are interpreted as UTC wall time.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a trip timestamp cell.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseInteger parses an integer cell, accepting a float rendering with a
// zero fraction ("1989.0").
func ParseInteger(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid integer %q: has a fraction", s)
	}
	return int64(f), nil
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "birth_year" → "Birth Year", "Start Time" stays as is.
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
