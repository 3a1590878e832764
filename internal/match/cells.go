package match

import (
	"fmt"
	"strings"
	"time"
)

// kickoffLayout is day.month.year hour:minute, leading zeros optional
const kickoffLayout = "2.1.2006 15:04"

// ParseError reports a table cell whose content does not have the expected shape
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parsing %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("parsing %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// splitLines splits a cell into its sub-fields, trimming each of them
func splitLines(cell string) []string {
	lines := strings.Split(cell, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}

// ParseKickoff parses the date/time cell.
//
// The portal prints either "date\ntime" or "weekday\ndate\ntime". Any other
// number of lines, or a date that is not day.month.year hour:minute, fails.
func ParseKickoff(cell string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	lines := splitLines(cell)
	var text string
	switch len(lines) {
	case 3:
		text = strings.Join(lines[1:], " ")
	case 2:
		text = strings.Join(lines, " ")
	default:
		return time.Time{}, &ParseError{
			Field: "kickoff",
			Value: cell,
			Err:   fmt.Errorf("expected 2 or 3 lines, got %d", len(lines)),
		}
	}

	t, err := time.ParseInLocation(kickoffLayout, text, loc)
	if err != nil {
		return time.Time{}, &ParseError{Field: "kickoff", Value: cell, Err: err}
	}
	return t, nil
}

// SplitLeague splits the league cell into league and match number.
// Without a second line the whole cell is the league.
func SplitLeague(cell string) (league, matchID string) {
	lines := splitLines(cell)
	if len(lines) == 2 {
		return lines[0], lines[1]
	}
	return strings.Join(lines, " "), ""
}

// SplitHome splits the home cell into home team and venue.
// Without a second line the venue is empty.
func SplitHome(cell string) (home, venue string) {
	lines := splitLines(cell)
	if len(lines) == 2 {
		return lines[0], lines[1]
	}
	return lines[0], ""
}
