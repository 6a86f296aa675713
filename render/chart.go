// Package render draws engine charts to image files with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/bikeshare/engine"
)

// Default image size.
var (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

// Save renders cfg and writes it to path. The extension of path picks the
// image format (.png, .svg, .pdf).
func Save(cfg *engine.ChartConfig, path string) error {
	p, err := build(cfg)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

// WritePNG renders cfg as PNG to w.
func WritePNG(cfg *engine.ChartConfig, w io.Writer) error {
	p, err := build(cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render: write png: %w", err)
	}
	return nil
}

// build lays out one bar group per series, side by side on a nominal X axis
// taken from the first series' labels.
func build(cfg *engine.ChartConfig) (*plot.Plot, error) {
	if cfg == nil || len(cfg.Series) == 0 || len(cfg.Series[0].Data) == 0 {
		return nil, errors.New("render: empty chart")
	}
	if cfg.ChartType != "" && cfg.ChartType != "bar" {
		return nil, fmt.Errorf("render: unsupported chart type %q", cfg.ChartType)
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}

	n := len(cfg.Series)
	barWidth := vg.Points(12)
	if n > 1 {
		barWidth = vg.Points(24 / float64(n))
	}

	for i, s := range cfg.Series {
		values := make(plotter.Values, len(s.Data))
		for j, pt := range s.Data {
			values[j] = pt.Value
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("render: series %q: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = seriesColor(cfg, i)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * barWidth
		p.Add(bars)
		if cfg.ShowLegend {
			p.Legend.Add(s.Name, bars)
		}
	}

	labels := make([]string, len(cfg.Series[0].Data))
	for i, pt := range cfg.Series[0].Data {
		labels[i] = pt.Label
	}
	p.NominalX(labels...)
	return p, nil
}

func seriesColor(cfg *engine.ChartConfig, i int) color.Color {
	hex := cfg.Series[i].Color
	if hex == "" && i < len(cfg.Colors) {
		hex = cfg.Colors[i]
	}
	if c, ok := parseHex(hex); ok {
		return c
	}
	return color.RGBA{R: 79, G: 70, B: 229, A: 255}
}

// parseHex reads "#RRGGBB".
func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
