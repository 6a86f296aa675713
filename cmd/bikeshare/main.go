package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/bikeshare/config"
	"github.com/spektr-org/bikeshare/dataset"
	"github.com/spektr-org/bikeshare/engine"
	"github.com/spektr-org/bikeshare/logging"
	"github.com/spektr-org/bikeshare/render"
	"github.com/spektr-org/bikeshare/schema"
	"github.com/spektr-org/bikeshare/session"
)

// ============================================================================
// BIKESHARE CLI — Interactive US bikeshare trip explorer
// ============================================================================

const version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatalf("%v", err)
	}
}

// app holds what every command needs once flags are parsed.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
	catalog    *dataset.Catalog
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	a.catalog = dataset.NewCatalog(cfg.DataDir, logger, cfg.Entries()...)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "bikeshare",
		Short: "Explore US bikeshare trip data",
		Long: `bikeshare asks for a city and optional month/day, loads that city's trip
file and prints statistics on travel times, stations, trip durations and
users. The cycle repeats until you decline to restart.

Configuration comes from an optional YAML file (--config or CONFIG_FILE)
and environment variables (DATA_DIR, LOG_LEVEL, FILTERS_APPLY,
OUTPUT_FORMAT, OUTPUT_CHART_DIR, OUTPUT_EXPORT_DIR).`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.logger.Sync() //nolint:errcheck

			s := session.New(session.Dependency{
				Config: a.cfg,
				Loader: a.catalog,
				Logger: a.logger,
				In:     cmd.InOrStdin(),
				Out:    cmd.OutOrStdout(),
			})
			if err := s.Run(cmd.Context()); err != nil {
				a.logger.Error("session failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config file (default $CONFIG_FILE)")

	root.AddCommand(newSchemaCmd(a), newExportCmd(a), newChartCmd(a))
	return root
}

// ============================================================================
// SUBCOMMANDS
// ============================================================================

func newSchemaCmd(a *app) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "schema <city>",
		Short: "Print the detected column layout of a city's data file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := cityLayout(cmd.Context(), a.catalog, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), layout, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var month, day string
	cmd := &cobra.Command{
		Use:   "export <city> <out.parquet>",
		Short: "Convert a city's data file to Parquet, optionally filtered by month/day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, release, err := loadView(cmd.Context(), a.catalog, args[0], engine.Filters{Month: month, Day: day})
			if err != nil {
				return err
			}
			defer release()

			tbl, err := dataset.Materialize(view)
			if err != nil {
				return err
			}
			defer tbl.Release()

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			if err := dataset.WriteParquet(f, tbl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", tbl.Len(), args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", engine.All, "Month name filter (january..december or all)")
	cmd.Flags().StringVar(&day, "day", engine.All, "Weekday name filter (monday..sunday or all)")
	return cmd
}

func newChartCmd(a *app) *cobra.Command {
	var month, day string
	cmd := &cobra.Command{
		Use:   "chart <city> <out.png|out.csv>",
		Short: "Chart trips per start hour as an image or as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, release, err := loadView(cmd.Context(), a.catalog, args[0], engine.Filters{Month: month, Day: day})
			if err != nil {
				return err
			}
			defer release()

			chart, err := engine.BuildHourChart(view, fmt.Sprintf("Trips by start hour (%s)", args[0]))
			if err != nil {
				return err
			}

			out := args[1]
			if strings.EqualFold(filepath.Ext(out), ".csv") {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				return writeChartCSV(f, chart)
			}
			return render.Save(chart, out)
		},
	}
	cmd.Flags().StringVar(&month, "month", engine.All, "Month name filter (january..december or all)")
	cmd.Flags().StringVar(&day, "day", engine.All, "Weekday name filter (monday..sunday or all)")
	return cmd
}

// ============================================================================
// HELPERS
// ============================================================================

// loadView loads city and applies filters. release frees the loaded table.
func loadView(ctx context.Context, catalog *dataset.Catalog, city string, filters engine.Filters) (engine.View, func(), error) {
	tbl, err := catalog.Load(ctx, city)
	if err != nil {
		return nil, nil, err
	}
	view, err := engine.ApplyFilters(tbl, filters)
	if err != nil {
		tbl.Release()
		return nil, nil, err
	}
	return view, tbl.Release, nil
}

// cityLayout discovers a CSV layout from its leading rows, or reads the
// layout of a Parquet file from its schema.
func cityLayout(ctx context.Context, catalog *dataset.Catalog, city string) (*schema.Config, error) {
	path, err := catalog.Path(city)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		tbl, err := dataset.Load(ctx, path, city)
		if err != nil {
			return nil, err
		}
		defer tbl.Release()
		return tbl.Layout(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()
	return schema.DiscoverFromReader(f, schema.DiscoverOptions{SampleSize: dataset.SampleRows, Name: city})
}

// ============================================================================
// OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	var out []byte
	var err error

	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeChartCSV writes a label column plus one value column per series.
func writeChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	cw := csv.NewWriter(w)

	xLabel := chart.XAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	if len(chart.Series) > 0 {
		for i, d := range chart.Series[0].Data {
			row := []string{d.Label}
			for _, s := range chart.Series {
				if i < len(s.Data) {
					row = append(row, fmtNum(s.Data[i].Value))
				} else {
					row = append(row, "")
				}
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
