package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/portal"
	"github.com/pfrederiksen/refsched/internal/schedule"
)

var (
	muster   = match.RefereeName{Surname: "Muster", FirstName: "Max"}
	beispiel = match.RefereeName{Surname: "Beispiel", FirstName: "Erika"}
	now      = time.Date(2024, time.February, 20, 8, 0, 0, 0, time.UTC)
)

func testMatch(day, hour int, league, home string, officials ...match.Referee) *match.Match {
	return &match.Match{
		Kickoff:   time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC),
		League:    league,
		MatchID:   "5400" + home[:1],
		Home:      home,
		Guest:     "FC Gast",
		Venue:     "Sportplatz " + home,
		Officials: officials,
	}
}

func testSchedule() *schedule.Schedule {
	sr := match.Referee{Role: match.RoleReferee, Name: "Max Muster", Jurisdiction: "Nord", Status: match.StatusConfirmed}
	sra := match.Referee{Role: match.RoleAssistant1, Name: "Erika Beispiel", Jurisdiction: "Süd", Status: match.StatusUnconfirmed}

	shared := testMatch(2, 15, "Kreisliga A", "SV Zentrum", sr, sra)
	byRef := match.ByReferee{
		muster: {
			testMatch(9, 11, "Bezirksliga", "TSV Nord", sr),
			shared,
		},
		beispiel: {shared},
	}
	return &schedule.Schedule{
		Referees:  []match.RefereeName{muster, beispiel},
		ByReferee: byRef,
		ByDay:     match.GroupByDay(byRef),
		Failures: []schedule.Failure{{
			Referee:    muster,
			RowFailure: portal.RowFailure{Row: 3, Err: errors.New("bad kickoff")},
		}},
	}
}

func TestWriteOutput_Text(t *testing.T) {
	result := NewOutputResult(testSchedule(), schedule.GroupByReferee, SortAsListed, nil, now)

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"\nBeispiel Erika (1 match):\n",
		"\nMuster Max (2 matches):\n",
		"  Sat, 09.03.2024 11:00  Bezirksliga  TSV Nord v. FC Gast\n",
		"      ✓ SR: Max Muster (Nord)\n",
		"      ❓ SRA1: Erika Beispiel (Süd)\n",
		"\nTotal: 2 matches for 2 referees\n",
		"Warning: 1 listing row could not be read\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Venue:") {
		t.Error("venue printed without verbose")
	}

	// portal order is kept: the 9th is listed before the 2nd
	section := out[strings.Index(out, "Muster Max"):]
	if strings.Index(section, "TSV Nord") > strings.Index(section, "SV Zentrum v.") {
		t.Errorf("search order not kept:\n%s", section)
	}
}

func TestWriteOutput_TextByDate(t *testing.T) {
	result := NewOutputResult(testSchedule(), schedule.GroupByDate, SortAsListed, map[string]string{"Kreisliga A": "KL A"}, now)

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, true); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	out := buf.String()

	first := strings.Index(out, "Sat, 02.03.2024 (1 match):")
	second := strings.Index(out, "Sat, 09.03.2024 (1 match):")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("days missing or out of order:\n%s", out)
	}
	for _, want := range []string{
		"  15:00  KL A  SV Zentrum v. FC Gast\n",
		"      Venue: Sportplatz SV Zentrum\n",
		"      Match: 5400S\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestWriteOutput_TextEmpty(t *testing.T) {
	result := NewOutputResult(&schedule.Schedule{}, schedule.GroupByReferee, SortAsListed, nil, now)

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	if buf.String() != "No referee selected.\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteOutput_TextNoAssignments(t *testing.T) {
	sched := &schedule.Schedule{
		Referees:  []match.RefereeName{muster},
		ByReferee: match.ByReferee{muster: nil},
		ByDay:     match.ByDay{},
	}
	result := NewOutputResult(sched, schedule.GroupByReferee, SortAsListed, nil, now)

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Muster Max (0 matches):\n  No assignments found.\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	result := NewOutputResult(testSchedule(), schedule.GroupByDate, SortAsListed, nil, now)

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}

	var report schedule.Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if report.GroupBy != schedule.GroupByDate || report.MatchCount != 2 || report.RowFailures != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Sections) != 2 || report.Sections[0].Key != "2024-03-02" {
		t.Fatalf("sections = %+v", report.Sections)
	}

	m := report.Sections[0].Matches[0]
	if got, want := m.Team[0], "SR: Max Muster (Nord)"; got != want {
		t.Errorf("team[0] = %q, want %q", got, want)
	}
	if got, want := m.TeamStatus[0], "✓ SR: Max Muster (Nord)"; got != want {
		t.Errorf("team_status[0] = %q, want %q", got, want)
	}
}

func TestWriteOutput_ICS(t *testing.T) {
	result := NewOutputResult(testSchedule(), schedule.GroupByReferee, SortAsListed, nil, now)

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatICS, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	out := buf.String()

	// the shared match is exported once
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("got %d events, want 2:\n%s", got, out)
	}
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n") {
		t.Errorf("not a calendar:\n%s", out)
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	result := NewOutputResult(testSchedule(), schedule.GroupByReferee, SortAsListed, nil, now)
	if err := WriteOutput(&bytes.Buffer{}, result, OutputFormat("xml"), false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 matches"},
		{1, "1 match"},
		{2, "2 matches"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "match", "matches"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
