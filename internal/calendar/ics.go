// Package calendar exports match schedules as iCalendar files.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/refsched/internal/match"
)

// MatchDuration is the calendar length of one match slot
const MatchDuration = 2 * time.Hour

// maxLineOctets is the RFC 5545 content line limit, excluding CRLF
const maxLineOctets = 75

// GenerateICS generates an iCalendar (.ics) file with one event per match.
// leagueNames maps portal league names to display names; stamp is the
// DTSTAMP written on every event.
func GenerateICS(matches []*match.Match, leagueNames map[string]string, stamp time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//refsched//referee assignments//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	for _, m := range matches {
		writeEvent(&ics, m, leagueNames, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeEvent(ics *strings.Builder, m *match.Match, leagueNames map[string]string, stamp time.Time) {
	writeLine(ics, "BEGIN:VEVENT")

	// Stable across exports
	writeLine(ics, fmt.Sprintf("UID:%s@refsched", m.Fingerprint()))
	writeLine(ics, fmt.Sprintf("DTSTAMP:%s", formatICSTime(stamp)))
	writeLine(ics, fmt.Sprintf("DTSTART:%s", formatICSTime(m.Kickoff)))
	writeLine(ics, fmt.Sprintf("DTEND:%s", formatICSTime(m.Kickoff.Add(MatchDuration))))

	summary := m.Title()
	if league := m.LeagueName(leagueNames); league != "" {
		summary = fmt.Sprintf("%s: %s", league, summary)
	}
	writeLine(ics, "SUMMARY:"+escapeICS(summary))

	description := strings.Join(m.TeamLines(), "\n")
	if m.MatchID != "" {
		description = fmt.Sprintf("Spiel %s\n%s", m.MatchID, description)
	}
	writeLine(ics, "DESCRIPTION:"+escapeICS(description))

	if m.Venue != "" {
		writeLine(ics, "LOCATION:"+escapeICS(m.Venue))
	}

	writeLine(ics, "STATUS:"+eventStatus(m))
	writeLine(ics, "SEQUENCE:0")
	writeLine(ics, "TRANSP:OPAQUE")
	writeLine(ics, "END:VEVENT")
}

// eventStatus is CONFIRMED once every assigned official confirmed
func eventStatus(m *match.Match) string {
	assigned := 0
	for _, r := range m.Officials {
		if !r.Filled() {
			continue
		}
		assigned++
		if r.Status != match.StatusConfirmed {
			return "TENTATIVE"
		}
	}
	if assigned == 0 {
		return "TENTATIVE"
	}
	return "CONFIRMED"
}

// writeLine writes one content line, folded at 75 octets without splitting runes
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines carry a leading space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
