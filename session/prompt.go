package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/bikeshare/engine"
	"github.com/spektr-org/bikeshare/report"
)

// ErrInputClosed is returned when input ends before a selection is complete.
var ErrInputClosed = errors.New("input closed")

// Selection is one validated city / month / day choice.
type Selection struct {
	City  string `json:"city"`
	Month string `json:"month"` // lowercase month name or "all"
	Day   string `json:"day"`   // lowercase weekday name or "all"
}

// Filters converts the selection for engine.ApplyFilters.
func (s Selection) Filters() engine.Filters {
	return engine.Filters{Month: s.Month, Day: s.Day}
}

// Prompter asks questions on out and reads one line answers from in.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	cities []string
}

// NewPrompter creates a Prompter accepting the given city names.
func NewPrompter(in io.Reader, out io.Writer, cities []string) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, cities: cities}
}

// Collect greets the user and asks for a city, a month and a day. City is
// required and re-asked until it matches exactly; a blank month or day
// selects "all".
func (p *Prompter) Collect() (Selection, error) {
	fmt.Fprintln(p.out, "Hello! Let's explore some US bikeshare data!")

	var sel Selection
	for {
		city, err := p.ask(fmt.Sprintf("Enter a city. %s.", cityChoices(p.cities)))
		if err != nil {
			return Selection{}, err
		}
		city = strings.TrimSpace(city)
		if contains(p.cities, city) {
			fmt.Fprintf(p.out, "The chosen city is %s.\n", city)
			sel.City = city
			break
		}
		fmt.Fprintln(p.out, "Unknown city. Please try again.")
	}

	month, err := p.choose("Enter a month. Leave blank to select all months.", "month", engine.Months)
	if err != nil {
		return Selection{}, err
	}
	sel.Month = month

	day, err := p.choose("Enter a day. Leave blank to select all days.", "day", engine.Weekdays)
	if err != nil {
		return Selection{}, err
	}
	sel.Day = day

	fmt.Fprintln(p.out, report.Separator)
	return sel, nil
}

// AskRestart asks whether to run another cycle. Only "yes" in any letter
// case continues; surrounding spaces are not trimmed. Closed input declines.
func (p *Prompter) AskRestart() bool {
	answer, err := p.ask("\nWould you like to restart? Enter yes or no.\n")
	if err != nil {
		return false
	}
	return strings.ToLower(answer) == "yes"
}

// choose asks until the answer is one of valid or blank ("all").
func (p *Prompter) choose(prompt, noun string, valid []string) (string, error) {
	for {
		answer, err := p.ask(prompt)
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		switch {
		case contains(valid, answer):
			fmt.Fprintf(p.out, "The chosen %s is %s.\n", noun, answer)
			return answer, nil
		case answer == "":
			return engine.All, nil
		}
		fmt.Fprintf(p.out, "Unknown %s. Please try again.\n", noun)
	}
}

// ask writes prompt without a newline and reads one line, dropping the line
// terminator only.
func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// cityChoices renders "{chicago, new york city or washington}".
func cityChoices(cities []string) string {
	switch len(cities) {
	case 0:
		return "{}"
	case 1:
		return "{" + cities[0] + "}"
	}
	return "{" + strings.Join(cities[:len(cities)-1], ", ") + " or " + cities[len(cities)-1] + "}"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
