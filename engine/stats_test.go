package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/spektr-org/bikeshare/schema"
)

// ============================================================================
// FIXTURES
// ============================================================================

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

// trip builds a record with the columns every city has.
func trip(start, end, from, to, userType string) Record {
	return Record{
		Strings: map[string]string{
			schema.StartStation: from,
			schema.EndStation:   to,
			schema.UserType:     userType,
		},
		Times: map[string]time.Time{
			schema.StartTime: ts(start),
			schema.EndTime:   ts(end),
		},
		Ints: map[string]int64{},
	}
}

func withGender(r Record, gender string) Record {
	r.Strings[schema.Gender] = gender
	return r
}

func withBirthYear(r Record, year int64) Record {
	r.Ints[schema.BirthYear] = year
	return r
}

var tripColumns = []string{
	schema.StartTime, schema.EndTime, schema.StartStation,
	schema.EndStation, schema.UserType,
}

func chicagoColumns() []string {
	return append(append([]string{}, tripColumns...), schema.Gender, schema.BirthYear)
}

// ============================================================================
// TIME STATS
// ============================================================================

func TestTimeStatsUsesFirstQualifyingTrip(t *testing.T) {
	view := NewSliceView([]Record{
		// Crosses midnight into the next month and weekday: never qualifies.
		trip("2017-01-31 23:50:00", "2017-02-01 00:10:00", "A", "B", "Subscriber"),
		trip("2017-03-06 08:00:00", "2017-03-06 08:20:00", "A", "B", "Subscriber"),
		trip("2017-06-23 17:00:00", "2017-06-23 17:10:00", "A", "B", "Subscriber"),
		trip("2017-06-23 17:00:00", "2017-06-23 17:10:00", "A", "B", "Subscriber"),
	}, tripColumns...)

	got, err := TimeStats(view)
	if err != nil {
		t.Fatalf("TimeStats failed: %v", err)
	}
	if got.Month != "Mar" {
		t.Errorf("Month = %q, want Mar", got.Month)
	}
	if got.Weekday != "Mon" {
		t.Errorf("Weekday = %q, want Mon", got.Weekday)
	}
	if got.StartHour != 23 {
		t.Errorf("StartHour = %d, want 23 (first trip)", got.StartHour)
	}
}

func TestTimeStatsNoQualifyingTrip(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-31 23:50:00", "2017-02-01 00:10:00", "A", "B", "Subscriber"),
	}, tripColumns...)

	if _, err := TimeStats(view); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestTimeStatsMissingColumn(t *testing.T) {
	view := NewSliceView(nil, schema.StartTime)

	_, err := TimeStats(view)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *MissingColumnError", err)
	}
	if missing.Column != schema.EndTime {
		t.Errorf("Column = %q, want %q", missing.Column, schema.EndTime)
	}
}

// ============================================================================
// STATION STATS
// ============================================================================

func TestStationStatsPairTieKeepsFirstSeen(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "B", "C", "Subscriber"),
		trip("2017-01-02 09:00:00", "2017-01-02 09:10:00", "A", "B", "Subscriber"),
		trip("2017-01-02 10:00:00", "2017-01-02 10:10:00", "A", "B", "Customer"),
		trip("2017-01-02 11:00:00", "2017-01-02 11:10:00", "B", "C", "Subscriber"),
	}, tripColumns...)

	got, err := StationStats(view)
	if err != nil {
		t.Fatalf("StationStats failed: %v", err)
	}
	if got.StartStation != "B" || got.EndStation != "C" {
		t.Errorf("stations = %q/%q, want B/C (first rows)", got.StartStation, got.EndStation)
	}
	if got.Trip != [2]string{"B", "C"} {
		t.Errorf("Trip = %v, want [B C]", got.Trip)
	}
	if got.TripCount != 2 {
		t.Errorf("TripCount = %d, want 2", got.TripCount)
	}
}

func TestStationStatsMostFrequentPair(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "A", "B", "Subscriber"),
		trip("2017-01-02 09:00:00", "2017-01-02 09:10:00", "C", "D", "Subscriber"),
		trip("2017-01-02 10:00:00", "2017-01-02 10:10:00", "C", "D", "Subscriber"),
	}, tripColumns...)

	got, err := StationStats(view)
	if err != nil {
		t.Fatalf("StationStats failed: %v", err)
	}
	if got.Trip != [2]string{"C", "D"} {
		t.Errorf("Trip = %v, want [C D]", got.Trip)
	}
}

func TestStationStatsSkipsNullStations(t *testing.T) {
	first := trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "", "", "Subscriber")
	delete(first.Strings, schema.StartStation)
	delete(first.Strings, schema.EndStation)
	view := NewSliceView([]Record{
		first,
		trip("2017-01-02 09:00:00", "2017-01-02 09:10:00", "X", "Y", "Subscriber"),
	}, tripColumns...)

	got, err := StationStats(view)
	if err != nil {
		t.Fatalf("StationStats failed: %v", err)
	}
	if got.StartStation != "X" || got.EndStation != "Y" {
		t.Errorf("stations = %q/%q, want X/Y", got.StartStation, got.EndStation)
	}
}

// ============================================================================
// DURATION STATS
// ============================================================================

func TestDurationStatsEqualDeltas(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-02 08:05:21", "A", "B", "Subscriber"),
		trip("2017-01-03 09:00:00", "2017-01-03 09:05:21", "A", "B", "Subscriber"),
	}, tripColumns...)

	got, err := DurationStats(view)
	if err != nil {
		t.Fatalf("DurationStats failed: %v", err)
	}
	if got.Mean != 321 {
		t.Errorf("Mean = %d, want 321", got.Mean)
	}
	if got.Total != 642 {
		t.Errorf("Total = %d, want 642", got.Total)
	}
	if got.Trips != 2 {
		t.Errorf("Trips = %d, want 2", got.Trips)
	}
}

func TestDurationStatsDropsDays(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-03 08:00:10", "A", "B", "Subscriber"),
	}, tripColumns...)

	got, err := DurationStats(view)
	if err != nil {
		t.Fatalf("DurationStats failed: %v", err)
	}
	if got.Total != 10 {
		t.Errorf("Total = %d, want 10 (day component dropped)", got.Total)
	}
}

func TestDurationStatsMeanTruncates(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-02 08:00:01", "A", "B", "Subscriber"),
		trip("2017-01-02 08:00:00", "2017-01-02 08:00:02", "A", "B", "Subscriber"),
	}, tripColumns...)

	got, err := DurationStats(view)
	if err != nil {
		t.Fatalf("DurationStats failed: %v", err)
	}
	if got.Mean != 1 {
		t.Errorf("Mean = %d, want 1", got.Mean)
	}
}

func TestDurationStatsEmpty(t *testing.T) {
	if _, err := DurationStats(NewSliceView(nil, tripColumns...)); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestDaySeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{0, 0},
		{321 * time.Second, 321},
		{321*time.Second + 900*time.Millisecond, 321},
		{25 * time.Hour, 3600},
		{-10 * time.Second, 86390},
		{-500 * time.Millisecond, 86399},
	}
	for _, tt := range tests {
		if got := DaySeconds(tt.in); got != tt.want {
			t.Errorf("DaySeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// USER STATS
// ============================================================================

func TestBirthYearStats(t *testing.T) {
	base := func() Record {
		return trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "A", "B", "Subscriber")
	}
	view := NewSliceView([]Record{
		withBirthYear(base(), 1980),
		withBirthYear(base(), 1975),
		withBirthYear(base(), 1980),
		base(), // null birth year
	}, chicagoColumns()...)

	got, err := BirthYearStats(view)
	if err != nil {
		t.Fatalf("BirthYearStats failed: %v", err)
	}
	want := BirthYears{Earliest: 1975, MostRecent: 1980, MostCommon: 1980}
	if *got != want {
		t.Errorf("BirthYearStats = %+v, want %+v", *got, want)
	}
}

func TestBirthYearModeTieFirstEncountered(t *testing.T) {
	base := func() Record {
		return trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "A", "B", "Subscriber")
	}
	view := NewSliceView([]Record{
		withBirthYear(base(), 1990),
		withBirthYear(base(), 1985),
		withBirthYear(base(), 1985),
		withBirthYear(base(), 1990),
	}, chicagoColumns()...)

	got, err := BirthYearStats(view)
	if err != nil {
		t.Fatalf("BirthYearStats failed: %v", err)
	}
	if got.MostCommon != 1990 {
		t.Errorf("MostCommon = %d, want 1990", got.MostCommon)
	}
}

func TestBirthYearAllNull(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "A", "B", "Subscriber"),
	}, chicagoColumns()...)

	if _, err := BirthYearStats(view); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestGenderCountsMissingColumn(t *testing.T) {
	view := NewSliceView([]Record{
		trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "A", "B", "Subscriber"),
	}, tripColumns...)

	_, err := GenderCounts(view)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	var missing *MissingColumnError
	if !errors.As(err, &missing) || missing.Column != schema.Gender {
		t.Errorf("err = %v, want MissingColumnError for Gender", err)
	}
}

func TestUserStats(t *testing.T) {
	base := func(userType, gender string, year int64) Record {
		r := trip("2017-01-02 08:00:00", "2017-01-02 08:10:00", "A", "B", userType)
		return withBirthYear(withGender(r, gender), year)
	}
	view := NewSliceView([]Record{
		base("Customer", "Female", 1990),
		base("Subscriber", "Male", 1980),
		base("Subscriber", "Male", 1980),
	}, chicagoColumns()...)

	got, err := UserStats(view)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if len(got.UserTypes) != 2 || got.UserTypes[0].Key != "Subscriber" || got.UserTypes[0].Count != 2 {
		t.Errorf("UserTypes = %+v, want Subscriber=2 first", got.UserTypes)
	}
	if len(got.Genders) != 2 || got.Genders[0].Key != "Male" {
		t.Errorf("Genders = %+v, want Male first", got.Genders)
	}
	if got.BirthYears.MostCommon != 1980 {
		t.Errorf("MostCommon = %d, want 1980", got.BirthYears.MostCommon)
	}
}
