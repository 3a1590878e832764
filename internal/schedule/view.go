package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/refsched/internal/match"
)

// GroupBy selects how a schedule is split into sections
type GroupBy string

const (
	GroupByReferee GroupBy = "referee"
	GroupByDate    GroupBy = "date"
)

// ParseGroupBy parses a grouping name. Empty means by referee.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", GroupByReferee:
		return GroupByReferee, nil
	case GroupByDate, "day":
		return GroupByDate, nil
	default:
		return "", fmt.Errorf("invalid grouping: %s (must be 'referee' or 'date')", s)
	}
}

// Section is one heading of a rendered schedule with its matches
type Section struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Matches []MatchView `json:"matches"`
}

// MatchView is a match prepared for display and export
type MatchView struct {
	Kickoff    time.Time       `json:"kickoff"`
	Date       string          `json:"date"`
	Time       string          `json:"time"`
	League     string          `json:"league"`
	LeagueName string          `json:"league_name"`
	MatchID    string          `json:"match_id,omitempty"`
	Home       string          `json:"home"`
	Guest      string          `json:"guest"`
	Venue      string          `json:"venue,omitempty"`
	Officials  []match.Referee `json:"officials"`
	Team       []string        `json:"team"`
	TeamStatus []string        `json:"team_status"`
	Slide      []string        `json:"slide"`
}

// NewMatchView renders m with the configured league display names
func NewMatchView(m *match.Match, leagueNames map[string]string) MatchView {
	return MatchView{
		Kickoff:    m.Kickoff,
		Date:       m.Kickoff.Format("Mon, 02.01.2006"),
		Time:       m.Kickoff.Format("15:04"),
		League:     m.League,
		LeagueName: m.LeagueName(leagueNames),
		MatchID:    m.MatchID,
		Home:       m.Home,
		Guest:      m.Guest,
		Venue:      m.Venue,
		Officials:  m.Officials,
		Team:       m.TeamLines(),
		TeamStatus: m.StatusLines(),
		Slide:      m.SlideFields(leagueNames),
	}
}

// Sections splits the schedule into display sections. By referee, sections
// follow surname order and keep each search's row order. By date, sections
// are chronological and sorted by kickoff.
func (s *Schedule) Sections(by GroupBy, leagueNames map[string]string) []Section {
	var sections []Section

	switch by {
	case GroupByDate:
		for _, d := range s.ByDay.Days() {
			sections = append(sections, Section{
				Key:     d.String(),
				Title:   d.Time(time.UTC).Format("Mon, 02.01.2006"),
				Matches: views(s.ByDay[d], leagueNames),
			})
		}
	default:
		for _, n := range s.ByReferee.Names() {
			sections = append(sections, Section{
				Key:     n.Param(),
				Title:   n.String(),
				Matches: views(s.ByReferee[n], leagueNames),
			})
		}
	}

	if sections == nil {
		sections = []Section{}
	}
	return sections
}

// Matches returns every distinct match in chronological order
func (s *Schedule) Matches() []*match.Match {
	all := make([]*match.Match, 0, s.ByDay.Total())
	for _, d := range s.ByDay.Days() {
		all = append(all, s.ByDay[d]...)
	}
	return all
}

func views(matches []*match.Match, leagueNames map[string]string) []MatchView {
	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, NewMatchView(m, leagueNames))
	}
	return out
}

// NoRefereeSelected is shown when a request names no referee the viewer may see
const NoRefereeSelected = "No referee selected"

// Report is a rendered schedule as served to clients
type Report struct {
	GeneratedAt time.Time           `json:"generated_at"`
	GroupBy     GroupBy             `json:"group_by"`
	Empty       bool                `json:"empty"`
	Message     string              `json:"message,omitempty"`
	Referees    []match.RefereeName `json:"referees"`
	Sections    []Section           `json:"sections"`
	MatchCount  int                 `json:"match_count"`
	RowFailures int                 `json:"row_failures"`
}

// NewReport renders s grouped by by
func NewReport(s *Schedule, by GroupBy, leagueNames map[string]string, now time.Time) *Report {
	r := &Report{
		GeneratedAt: now,
		GroupBy:     by,
		Empty:       s.Empty(),
		Referees:    s.Referees,
		Sections:    s.Sections(by, leagueNames),
		MatchCount:  s.ByDay.Total(),
		RowFailures: len(s.Failures),
	}
	if r.Referees == nil {
		r.Referees = []match.RefereeName{}
	}
	if r.Empty {
		r.Message = NoRefereeSelected
	}
	return r
}
