package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var cities = []string{"chicago", "new york city", "washington"}

func collect(t *testing.T, input string) (Selection, string, error) {
	t.Helper()
	var out bytes.Buffer
	sel, err := NewPrompter(strings.NewReader(input), &out, cities).Collect()
	return sel, out.String(), err
}

func TestCollectRejectsCaseVariantsAndBlankCity(t *testing.T) {
	sel, out, err := collect(t, "Chicago\nCHICAGO\n\nchicago\n\n\n")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if sel.City != "chicago" {
		t.Errorf("City = %q, want chicago", sel.City)
	}
	if n := strings.Count(out, "Unknown city. Please try again."); n != 3 {
		t.Errorf("got %d rejections, want 3:\n%s", n, out)
	}
	if n := strings.Count(out, "Enter a city. {chicago, new york city or washington}."); n != 4 {
		t.Errorf("got %d city prompts, want 4", n)
	}
	if !strings.Contains(out, "The chosen city is chicago.\n") {
		t.Errorf("missing confirmation:\n%s", out)
	}
}

func TestCollectTrimsCity(t *testing.T) {
	sel, _, err := collect(t, "  new york city \n\n\n")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if sel.City != "new york city" {
		t.Errorf("City = %q", sel.City)
	}
}

func TestCollectBlankMeansAll(t *testing.T) {
	sel, out, err := collect(t, "washington\n\n   \n")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	want := Selection{City: "washington", Month: "all", Day: "all"}
	if sel != want {
		t.Errorf("Selection = %+v, want %+v", sel, want)
	}
	if strings.Contains(out, "The chosen month") || strings.Contains(out, "The chosen day") {
		t.Errorf("blank answers should not be confirmed:\n%s", out)
	}
	if !strings.HasSuffix(out, strings.Repeat("-", 40)+"\n") {
		t.Errorf("output should end with the separator:\n%q", out)
	}
}

func TestCollectMonthAndDay(t *testing.T) {
	sel, out, err := collect(t, "chicago\nJune\njune\nfunday\nfriday\n")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if sel.Month != "june" || sel.Day != "friday" {
		t.Errorf("Selection = %+v", sel)
	}
	for _, line := range []string{
		"Unknown month. Please try again.\n",
		"The chosen month is june.\n",
		"Unknown day. Please try again.\n",
		"The chosen day is friday.\n",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("missing %q in\n%s", line, out)
		}
	}
	if sel.Filters().Month != "june" {
		t.Errorf("Filters().Month = %q", sel.Filters().Month)
	}
}

func TestCollectGreetsFirst(t *testing.T) {
	_, out, _ := collect(t, "chicago\n\n\n")
	if !strings.HasPrefix(out, "Hello! Let's explore some US bikeshare data!\n") {
		t.Errorf("output should start with the greeting:\n%s", out)
	}
}

func TestCollectInputClosed(t *testing.T) {
	for _, input := range []string{"", "boston\n", "chicago\n"} {
		if _, _, err := collect(t, input); !errors.Is(err, ErrInputClosed) {
			t.Errorf("Collect(%q) err = %v, want ErrInputClosed", input, err)
		}
	}
}

func TestCollectLastLineWithoutNewline(t *testing.T) {
	sel, _, err := collect(t, "chicago\nmay\nmonday")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if sel.Day != "monday" {
		t.Errorf("Day = %q, want monday", sel.Day)
	}
}

func TestAskRestart(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"Yes\n", true},
		{"YES\n", true},
		{"yes\r\n", true},
		{"no\n", false},
		{"y\n", false},
		{" yes\n", false},
		{"yes please\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := NewPrompter(strings.NewReader(tt.input), &out, cities).AskRestart()
		if got != tt.want {
			t.Errorf("AskRestart(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "\nWould you like to restart? Enter yes or no.\n" {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestCityChoices(t *testing.T) {
	if got := cityChoices([]string{"chicago"}); got != "{chicago}" {
		t.Errorf("cityChoices = %q", got)
	}
	if got := cityChoices([]string{"a", "b"}); got != "{a or b}" {
		t.Errorf("cityChoices = %q", got)
	}
}
