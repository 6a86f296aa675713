package engine

import (
	"strconv"

	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from trip views
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildHourChart counts trips per Start Time hour. The single series always
// has 24 points, "0" through "23".
func BuildHourChart(view View, title string) (*ChartConfig, error) {
	if err := requireColumns(view, schema.StartTime); err != nil {
		return nil, err
	}

	var counts [24]int
	for i := 0; i < view.Len(); i++ {
		if t, ok := view.Time(i, schema.StartTime); ok {
			counts[t.Hour()]++
		}
	}

	points := make([]ChartPoint, 0, len(counts))
	for h, c := range counts {
		points = append(points, ChartPoint{Label: strconv.Itoa(h), Value: float64(c)})
	}

	if title == "" {
		title = "Trips by start hour"
	}
	config := &ChartConfig{
		ChartType: "bar",
		Title:     title,
		XAxis:     "Hour",
		YAxis:     "Trips",
		Series:    []ChartSeries{{Name: "Trips", Data: points}},
		ShowGrid:  true,
	}
	config.Colors = assignColors(len(config.Series))
	config.Series[0].Color = config.Colors[0]
	return config, nil
}

// BuildCountChart turns value-count groups into a single-series bar chart.
func BuildCountChart(title string, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}
	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{Label: g.Label, Value: float64(g.Count)})
	}
	config := &ChartConfig{
		ChartType:  "bar",
		Title:      title,
		XAxis:      title,
		YAxis:      "Trips",
		Series:     []ChartSeries{{Name: title, Data: points}},
		ShowLegend: false,
		ShowGrid:   true,
	}
	config.Colors = assignColors(len(config.Series))
	return config
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
