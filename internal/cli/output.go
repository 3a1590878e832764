package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/refsched/internal/calendar"
	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// OutputResult contains data to be output
type OutputResult struct {
	*schedule.Report

	matches     []*match.Match
	leagueNames map[string]string
}

// NewOutputResult renders a schedule for output, sorting each section by order
func NewOutputResult(sched *schedule.Schedule, groupBy schedule.GroupBy, order SortOrder, leagueNames map[string]string, now time.Time) *OutputResult {
	report := schedule.NewReport(sched, groupBy, leagueNames, now)
	for _, s := range report.Sections {
		sortMatches(s.Matches, order)
	}
	return &OutputResult{
		Report:      report,
		matches:     sched.Matches(),
		leagueNames: leagueNames,
	}
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.matches, result.leagueNames, result.GeneratedAt))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result.Report)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Empty {
		fmt.Fprintf(w, "%s.\n", schedule.NoRefereeSelected)
		return nil
	}

	byDate := result.GroupBy == schedule.GroupByDate

	for _, section := range result.Sections {
		fmt.Fprintf(w, "\n%s (%s):\n", section.Title, plural(len(section.Matches), "match", "matches"))
		if len(section.Matches) == 0 {
			fmt.Fprintln(w, "  No assignments found.")
			continue
		}

		for _, m := range section.Matches {
			// By date the section already names the day
			when := m.Time
			if !byDate {
				when = m.Date + " " + m.Time
			}
			fmt.Fprintf(w, "  %s  %s  %s v. %s\n", when, m.LeagueName, m.Home, m.Guest)
			for _, line := range m.TeamStatus {
				fmt.Fprintf(w, "      %s\n", line)
			}
			if verbose {
				if m.Venue != "" {
					fmt.Fprintf(w, "      Venue: %s\n", m.Venue)
				}
				if m.MatchID != "" {
					fmt.Fprintf(w, "      Match: %s\n", m.MatchID)
				}
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %s for %s\n",
		plural(result.MatchCount, "match", "matches"),
		plural(len(result.Referees), "referee", "referees"))

	if result.RowFailures > 0 {
		fmt.Fprintf(w, "Warning: %s could not be read\n", plural(result.RowFailures, "listing row", "listing rows"))
	}

	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
