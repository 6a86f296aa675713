package engine

import (
	"fmt"
	"time"

	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// STATISTICS — The four trip reports
// ============================================================================
// Read-only over a View. The time and station "most common" values are the
// first qualifying value in row order, not a frequency count; reports built
// on them depend on the file's row order.
// ============================================================================

// ============================================================================
// TIME OF TRAVEL
// ============================================================================

// TimeStats reports the month and weekday of the first trip that starts and
// ends in the same month (resp. on the same weekday), plus the start hour of
// the first trip.
func TimeStats(view View) (*TravelTimes, error) {
	if err := requireColumns(view, schema.StartTime, schema.EndTime); err != nil {
		return nil, err
	}

	var result TravelTimes
	var haveMonth, haveDay, haveHour bool
	for i := 0; i < view.Len() && !(haveMonth && haveDay && haveHour); i++ {
		start, ok := view.Time(i, schema.StartTime)
		if !ok {
			continue
		}
		if !haveHour {
			result.StartHour = start.Hour()
			haveHour = true
		}
		end, ok := view.Time(i, schema.EndTime)
		if !ok {
			continue
		}
		if !haveMonth && start.Month() == end.Month() {
			result.Month = MonthAbbr(start.Month())
			haveMonth = true
		}
		if !haveDay && start.Weekday() == end.Weekday() {
			result.Weekday = WeekdayAbbr(start.Weekday())
			haveDay = true
		}
	}

	if !haveMonth || !haveDay {
		return nil, fmt.Errorf("no trip starts and ends in the same month and day: %w", ErrNoData)
	}
	return &result, nil
}

// MonthAbbr returns the three-letter month name ("Jan").
func MonthAbbr(m time.Month) string { return m.String()[:3] }

// WeekdayAbbr returns the three-letter day name ("Mon").
func WeekdayAbbr(d time.Weekday) string { return d.String()[:3] }

// ============================================================================
// STATIONS
// ============================================================================

// StationStats reports the first start station, the first end station and
// the most frequent (start, end) pair. Pair ties go to the pair seen first.
func StationStats(view View) (*StationUsage, error) {
	if err := requireColumns(view, schema.StartStation, schema.EndStation); err != nil {
		return nil, err
	}

	start, err := FirstValue(view, schema.StartStation)
	if err != nil {
		return nil, err
	}
	end, err := FirstValue(view, schema.EndStation)
	if err != nil {
		return nil, err
	}

	pairs := groupByPair(view, schema.StartStation, schema.EndStation)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("station pairs: %w", ErrNoData)
	}
	SortByCount(pairs)
	top := pairs[0]

	return &StationUsage{
		StartStation: start,
		EndStation:   end,
		Trip:         [2]string{top.Keys[0], top.Keys[1]},
		TripCount:    top.Count,
	}, nil
}

// ============================================================================
// TRIP DURATION
// ============================================================================

const secondsPerDay = 24 * 60 * 60

// DurationStats sums and averages trip durations in whole seconds. Each
// duration keeps only its within-day part, so a trip of 1 day 10 seconds
// counts as 10 seconds and negative spans wrap into [0, 86400).
func DurationStats(view View) (*TripDurations, error) {
	if err := requireColumns(view, schema.StartTime, schema.EndTime); err != nil {
		return nil, err
	}

	var result TripDurations
	for i := 0; i < view.Len(); i++ {
		start, ok := view.Time(i, schema.StartTime)
		if !ok {
			continue
		}
		end, ok := view.Time(i, schema.EndTime)
		if !ok {
			continue
		}
		result.Total += DaySeconds(end.Sub(start))
		result.Trips++
	}

	if result.Trips == 0 {
		return nil, fmt.Errorf("trip durations: %w", ErrNoData)
	}
	result.Mean = result.Total / int64(result.Trips)
	return &result, nil
}

// DaySeconds returns the seconds-within-day component of d, flooring
// sub-second parts.
func DaySeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d < 0 && d%time.Second != 0 {
		secs--
	}
	secs %= secondsPerDay
	if secs < 0 {
		secs += secondsPerDay
	}
	return secs
}

// ============================================================================
// USERS
// ============================================================================

// UserTypeCounts counts trips per User Type, most frequent first.
func UserTypeCounts(view View) ([]Group, error) {
	return ValueCounts(view, schema.UserType)
}

// GenderCounts counts trips per Gender, most frequent first. Cities without
// a Gender column return a *MissingColumnError.
func GenderCounts(view View) ([]Group, error) {
	return ValueCounts(view, schema.Gender)
}

// BirthYearStats reports the earliest, most recent and most common Birth Year.
func BirthYearStats(view View) (*BirthYears, error) {
	lo, hi, mode, err := IntSummary(view, schema.BirthYear)
	if err != nil {
		return nil, err
	}
	return &BirthYears{Earliest: lo, MostRecent: hi, MostCommon: mode}, nil
}

// UserStats runs the three user statistics, stopping at the first error.
func UserStats(view View) (*UserProfile, error) {
	types, err := UserTypeCounts(view)
	if err != nil {
		return nil, err
	}
	genders, err := GenderCounts(view)
	if err != nil {
		return nil, err
	}
	years, err := BirthYearStats(view)
	if err != nil {
		return nil, err
	}
	return &UserProfile{UserTypes: types, Genders: genders, BirthYears: years}, nil
}
