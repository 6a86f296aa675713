// Package session drives the interactive loop: collect a selection, load the
// city, print the reports, offer a restart.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spektr-org/bikeshare/config"
	"github.com/spektr-org/bikeshare/dataset"
	"github.com/spektr-org/bikeshare/engine"
	"github.com/spektr-org/bikeshare/render"
	"github.com/spektr-org/bikeshare/report"
)

// Loader loads the dataset of a city.
type Loader interface {
	Cities() []string
	Load(ctx context.Context, city string) (*dataset.Table, error)
}

// Dependency carries what a Session needs. NewID and Clock default to
// UUIDv7 ids and time.Now.
type Dependency struct {
	Config config.Config
	Loader Loader
	Logger *zap.Logger
	In     io.Reader
	Out    io.Writer
	NewID  func() string
	Clock  func() time.Time
}

// Session is one interactive run over stdin/stdout.
type Session struct {
	cfg      config.Config
	loader   Loader
	logger   *zap.Logger
	out      io.Writer
	prompter *Prompter
	newID    func() string
	clock    func() time.Time
}

// New builds a session from its dependencies.
func New(dep Dependency) *Session {
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	newID := dep.NewID
	if newID == nil {
		newID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}

	clock := dep.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Session{
		cfg:      dep.Config,
		loader:   dep.Loader,
		logger:   logger,
		out:      dep.Out,
		prompter: NewPrompter(dep.In, dep.Out, dep.Loader.Cities()),
		newID:    newID,
		clock:    clock,
	}
}

// Run repeats cycles until the user declines to restart. Declining (or
// closing input at the restart prompt) returns nil; any cycle error is
// returned as is.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Cycle(ctx); err != nil {
			return err
		}
		if !s.prompter.AskRestart() {
			s.logger.Debug("session terminated")
			return nil
		}
	}
}

// Cycle runs one collect → load → report pass, then writes the optional
// chart and export artifacts.
func (s *Session) Cycle(ctx context.Context) error {
	logger := s.logger.With(zap.String("session_id", s.newID()))

	sel, err := s.prompter.Collect()
	if err != nil {
		return err
	}
	logger.Info("selection collected",
		zap.String("city", sel.City),
		zap.String("month", sel.Month),
		zap.String("day", sel.Day))

	tbl, err := s.loader.Load(ctx, sel.City)
	if err != nil {
		return err
	}
	defer tbl.Release()

	var view engine.View = tbl
	if s.cfg.Filters.Apply {
		view, err = engine.ApplyFilters(tbl, sel.Filters())
		if err != nil {
			return fmt.Errorf("apply filters: %w", err)
		}
		logger.Info("filters applied", zap.Int("rows", view.Len()))
	}

	reporter := report.New(s.out,
		report.WithFormat(s.cfg.Output.Format),
		report.WithLogger(logger),
		report.WithClock(s.clock))
	if err := reporter.All(view); err != nil {
		return err
	}

	if err := s.writeCharts(sel.City, view, logger); err != nil {
		return err
	}
	return s.writeExport(sel.City, view, logger)
}

// ============================================================================
// ARTIFACTS
// ============================================================================

func (s *Session) writeCharts(city string, view engine.View, logger *zap.Logger) error {
	dir := s.cfg.Output.ChartDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	hours, err := engine.BuildHourChart(view, fmt.Sprintf("Trips by start hour (%s)", city))
	if err != nil {
		return fmt.Errorf("build hour chart: %w", err)
	}
	charts := map[string]*engine.ChartConfig{"start-hours": hours}

	if types, err := engine.UserTypeCounts(view); err == nil && len(types) > 0 {
		charts["user-types"] = engine.BuildCountChart("User Type", types)
	}

	for suffix, chart := range charts {
		path := filepath.Join(dir, FileStem(city)+"-"+suffix+".png")
		if err := render.Save(chart, path); err != nil {
			return err
		}
		logger.Info("chart written", zap.String("path", path))
	}
	return nil
}

func (s *Session) writeExport(city string, view engine.View, logger *zap.Logger) error {
	dir := s.cfg.Output.ExportDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tbl, err := dataset.Materialize(view)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer tbl.Release()

	path := filepath.Join(dir, FileStem(city)+".parquet")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	if err := dataset.WriteParquet(f, tbl); err != nil {
		return err
	}
	logger.Info("export written", zap.String("path", path), zap.Int("rows", tbl.Len()))
	return nil
}

// FileStem turns a city name into a file name stem: "new york city" →
// "new_york_city".
func FileStem(city string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "_")
}
