package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spektr-org/bikeshare/config"
	"github.com/spektr-org/bikeshare/dataset"
	"github.com/spektr-org/bikeshare/engine"
)

const chicagoCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type,Gender,Birth Year
1423854,2017-06-23 15:09:32,2017-06-23 15:14:53,321,Wood St & Hubbard St,Damen Ave & Chicago Ave,Subscriber,Male,1992.0
955915,2017-05-25 18:19:03,2017-05-25 18:45:53,1610,Theater on the Lake,Sheffield Ave & Waveland Ave,Subscriber,Female,1992.0
9031,2017-01-04 08:27:49,2017-01-04 08:34:45,416,May St & Taylor St,Wood St & Taylor St,Subscriber,Male,1981.0
`

const washingtonCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type
1621326,2017-06-21 08:36:34,2017-06-21 08:44:43,489.066,14th & Belmont St NW,15th & K St NW,Subscriber
`

// dataDir writes the fixtures under a temp dir and returns a catalog over it.
func dataDir(t *testing.T) *dataset.Catalog {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"chicago.csv":    chicagoCSV,
		"washington.csv": washingtonCSV,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dataset.NewCatalog(dir, nil)
}

func newSession(t *testing.T, cfg config.Config, input string, out *bytes.Buffer) *Session {
	t.Helper()
	fixed := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	return New(Dependency{
		Config: cfg,
		Loader: dataDir(t),
		In:     strings.NewReader(input),
		Out:    out,
		NewID:  func() string { return "test-session" },
		Clock:  func() time.Time { return fixed },
	})
}

func TestRunSingleCycle(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, config.Default(), "chicago\n\n\nno\n", &out)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := out.String()
	for _, part := range []string{
		"The chosen city is chicago.\n",
		"Jun is the most common month\n",
		"Wood St & Hubbard St is the most commonly used start station\n",
		"0:39:07 is the total travel time\n",
		"1981 is the earliest year of birth\n",
		"\nThis took 0 seconds.\n",
		"\nWould you like to restart? Enter yes or no.\n",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("missing %q in output", part)
		}
	}
	if n := strings.Count(got, "Hello! Let's explore"); n != 1 {
		t.Errorf("got %d cycles, want 1", n)
	}
}

func TestRunRestarts(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, config.Default(), "chicago\n\n\nYes\nchicago\nmay\n\nnope\n", &out)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := strings.Count(out.String(), "Hello! Let's explore"); n != 2 {
		t.Errorf("got %d cycles, want 2", n)
	}
}

func TestRunFiltersAreNoOpByDefault(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, config.Default(), "chicago\njanuary\n\nno\n", &out)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// All three trips still count toward the total.
	if !strings.Contains(out.String(), "0:39:07 is the total travel time") {
		t.Errorf("month filter should not apply by default:\n%s", out.String())
	}
}

func TestRunAppliesFiltersWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Filters.Apply = true

	var out bytes.Buffer
	s := newSession(t, cfg, "chicago\njanuary\n\nno\n", &out)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "0:06:56 is the total travel time") {
		t.Errorf("only the January trip should count:\n%s", out.String())
	}
}

func TestRunMissingGenderIsFatal(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, config.Default(), "washington\n\n\nno\n", &out)

	err := s.Run(context.Background())
	if !errors.Is(err, engine.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if strings.Contains(out.String(), "Would you like to restart?") {
		t.Error("a failed cycle should not offer a restart")
	}
}

func TestRunMissingDataFile(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, config.Default(), "new york city\n\n\nno\n", &out)

	if err := s.Run(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestRunInputClosed(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, config.Default(), "chicago\n", &out)

	if err := s.Run(context.Background()); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("err = %v, want ErrInputClosed", err)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	s := newSession(t, config.Default(), "chicago\n\n\nno\n", &out)
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCycleWritesArtifacts(t *testing.T) {
	cfg := config.Default()
	cfg.Output.ChartDir = filepath.Join(t.TempDir(), "charts")
	cfg.Output.ExportDir = filepath.Join(t.TempDir(), "export")
	cfg.Output.Format = config.FormatJSON

	var out bytes.Buffer
	s := newSession(t, cfg, "chicago\n\n\n", &out)
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	for _, path := range []string{
		filepath.Join(cfg.Output.ChartDir, "chicago-start-hours.png"),
		filepath.Join(cfg.Output.ChartDir, "chicago-user-types.png"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("chart missing: %v", err)
		}
	}

	exported := filepath.Join(cfg.Output.ExportDir, "chicago.parquet")
	tbl, err := dataset.Load(context.Background(), exported, "chicago")
	if err != nil {
		t.Fatalf("exported file unreadable: %v", err)
	}
	defer tbl.Release()
	if tbl.Len() != 3 {
		t.Errorf("exported %d rows, want 3", tbl.Len())
	}

	if !strings.Contains(out.String(), `"report":"users"`) {
		t.Errorf("JSON output missing users report:\n%s", out.String())
	}
}

func TestFileStem(t *testing.T) {
	if got := FileStem("new york city"); got != "new_york_city" {
		t.Errorf("FileStem = %q", got)
	}
}
