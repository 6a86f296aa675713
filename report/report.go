// Package report prints the four trip statistics, each framed by a banner,
// a timing line and a separator.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/bikeshare/engine"
	"github.com/spektr-org/bikeshare/schema"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Separator closes every report and the input prompts.
var Separator = strings.Repeat("-", 40)

// Report names, used as the "report" field of JSON output and in logs.
const (
	NameTime     = "time"
	NameStations = "stations"
	NameDuration = "duration"
	NameUsers    = "users"
)

// Reporter writes statistics reports for one view to w.
type Reporter struct {
	w    io.Writer
	opts *options
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	return &Reporter{w: w, opts: applyOptions(opts)}
}

// All runs the four reports in order and stops at the first error.
func (r *Reporter) All(view engine.View) error {
	for _, run := range []func(engine.View) error{r.Time, r.Stations, r.Durations, r.Users} {
		if err := run(view); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// REPORTS
// ============================================================================

// Time prints the most frequent times of travel.
func (r *Reporter) Time(view engine.View) error {
	return r.run(NameTime, "Calculating The Most Frequent Times of Travel...", func() (interface{}, error) {
		s, err := engine.TimeStats(view)
		if err != nil {
			return nil, fmt.Errorf("time stats: %w", err)
		}
		r.line("%s is the most common month", s.Month)
		r.line("%s is the most common day", s.Weekday)
		r.line("%d is the most common start hour", s.StartHour)
		return s, nil
	})
}

// Stations prints the most popular stations and trip.
func (r *Reporter) Stations(view engine.View) error {
	return r.run(NameStations, "Calculating The Most Popular Stations and Trip...", func() (interface{}, error) {
		s, err := engine.StationStats(view)
		if err != nil {
			return nil, fmt.Errorf("station stats: %w", err)
		}
		r.line("%s is the most commonly used start station", s.StartStation)
		r.line("%s is the most commonly used end station", s.EndStation)
		r.line("%s is the most frequent combination of start station and end station trip",
			engine.TupleLabel(s.Trip[0], s.Trip[1]))
		return s, nil
	})
}

// Durations prints total and mean travel time.
func (r *Reporter) Durations(view engine.View) error {
	return r.run(NameDuration, "Calculating Trip Duration...", func() (interface{}, error) {
		s, err := engine.DurationStats(view)
		if err != nil {
			return nil, fmt.Errorf("trip duration stats: %w", err)
		}
		r.line("%s is the total travel time", engine.FormatDuration(s.Total))
		r.line("%s is the mean travel time", engine.FormatDuration(s.Mean))
		return durationResult{
			TripDurations: s,
			Total:         engine.FormatDuration(s.Total),
			Mean:          engine.FormatDuration(s.Mean),
		}, nil
	})
}

// Users prints user type counts, gender counts and birth year statistics.
// In text mode each part is printed as soon as it is computed, so a city
// without a Gender column still shows its user type counts before the error.
func (r *Reporter) Users(view engine.View) error {
	return r.run(NameUsers, "Calculating User Stats...", func() (interface{}, error) {
		var out usersResult

		types, err := engine.UserTypeCounts(view)
		if err != nil {
			return nil, fmt.Errorf("user stats: %w", err)
		}
		out.UserTypes = engine.BuildCountTable(schema.UserType, types)
		r.line("User type count: ")
		r.line("%s", engine.FormatCounts(out.UserTypes))

		genders, err := engine.GenderCounts(view)
		if err != nil {
			return nil, fmt.Errorf("user stats: %w", err)
		}
		out.Genders = engine.BuildCountTable(schema.Gender, genders)
		r.line("User gender count: ")
		r.line("%s", engine.FormatCounts(out.Genders))

		years, err := engine.BirthYearStats(view)
		if err != nil {
			return nil, fmt.Errorf("user stats: %w", err)
		}
		out.BirthYears = years
		r.line("%d is the earliest year of birth", years.Earliest)
		r.line("%d is the most recent year of birth", years.MostRecent)
		r.line("%d is the most common year of birth", years.MostCommon)
		return out, nil
	})
}

// ============================================================================
// FRAMING
// ============================================================================

type durationResult struct {
	*engine.TripDurations
	Total string `json:"total"`
	Mean  string `json:"mean"`
}

type usersResult struct {
	UserTypes  *engine.TableData  `json:"userTypes"`
	Genders    *engine.TableData  `json:"genders"`
	BirthYears *engine.BirthYears `json:"birthYears"`
}

type jsonReport struct {
	Report         string      `json:"report"`
	ElapsedSeconds float64     `json:"elapsedSeconds"`
	Result         interface{} `json:"result"`
}

// run frames body: banner first, then (on success) the timing line and the
// separator. In JSON mode text lines are suppressed and one object is
// written per report.
func (r *Reporter) run(name, banner string, body func() (interface{}, error)) error {
	start := r.opts.now()
	if r.text() {
		fmt.Fprintln(r.w, "\n"+banner+"\n")
	}

	result, err := body()
	if err != nil {
		return err
	}
	elapsed := r.opts.now().Sub(start)
	r.opts.logger.Debug("report finished",
		zap.String("report", name),
		zap.Duration("elapsed", elapsed))

	if !r.text() {
		return r.writeJSON(jsonReport{Report: name, ElapsedSeconds: elapsed.Seconds(), Result: result})
	}
	fmt.Fprintf(r.w, "\nThis took %s seconds.\n", FormatSeconds(elapsed))
	fmt.Fprintln(r.w, Separator)
	return nil
}

func (r *Reporter) text() bool { return r.opts.format != FormatJSON }

func (r *Reporter) line(format string, args ...interface{}) {
	if r.text() {
		fmt.Fprintf(r.w, format+"\n", args...)
	}
}

func (r *Reporter) writeJSON(v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(out))
	return err
}

// FormatSeconds renders d in seconds with as many digits as needed.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
