package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// LOADER — city → file path → Table
// ============================================================================

// ErrUnknownCity is returned for a city that is not in the catalog.
var ErrUnknownCity = errors.New("unknown city")

// Entry maps a city name to its data file, relative to the catalog directory.
type Entry struct {
	City string
	File string
}

// DefaultEntries returns the three bundled cities.
func DefaultEntries() []Entry {
	return []Entry{
		{City: "chicago", File: "chicago.csv"},
		{City: "new york city", File: "new_york_city.csv"},
		{City: "washington", File: "washington.csv"},
	}
}

// Catalog resolves cities to data files under one directory.
type Catalog struct {
	dir     string
	entries []Entry
	logger  *zap.Logger
}

// NewCatalog creates a catalog. With no entries it uses DefaultEntries.
// A nil logger disables logging.
func NewCatalog(dir string, logger *zap.Logger, entries ...Entry) *Catalog {
	if len(entries) == 0 {
		entries = DefaultEntries()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{dir: dir, entries: entries, logger: logger}
}

// Cities returns the city names in catalog order.
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.City
	}
	return out
}

// Path returns the data file of city. Matching is exact and case-sensitive.
func (c *Catalog) Path(city string) (string, error) {
	for _, e := range c.entries {
		if e.City == city {
			return filepath.Join(c.dir, e.File), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCity, city)
}

// Load reads the data file of city.
func (c *Catalog) Load(ctx context.Context, city string) (*Table, error) {
	path, err := c.Path(city)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := Load(ctx, path, city)
	if err != nil {
		c.logger.Error("dataset load failed",
			zap.String("city", city),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	c.logger.Info("dataset loaded",
		zap.String("city", city),
		zap.String("path", path),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns())),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// Load reads a trip file, choosing the format from its extension
// (.csv or .parquet).
func Load(ctx context.Context, path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		t, err = LoadCSV(ctx, bufio.NewReader(f), name)
	case ".parquet", ".pq":
		t, err = LoadParquet(ctx, f, name)
	default:
		return nil, fmt.Errorf("unsupported data file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t, nil
}
