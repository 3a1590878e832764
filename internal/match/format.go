package match

import (
	"strings"
)

// String renders the assignment as "role: name (jurisdiction) [marker]".
// Unfilled slots render as the bare role.
func (r Referee) String() string {
	var b strings.Builder
	b.WriteString(string(r.Role))
	if r.Filled() {
		b.WriteString(": ")
		b.WriteString(r.Name)
		if r.Jurisdiction != "" {
			b.WriteString(" (" + r.Jurisdiction + ")")
		}
	}
	if r.External != "" {
		b.WriteString(" [" + r.External + "]")
	}
	return b.String()
}

// StatusLine prefixes String with the status glyph, or with a blank of the
// same width when the slot has no status
func (r Referee) StatusLine() string {
	if r.Status == "" {
		return "  " + r.String()
	}
	return string(r.Status) + " " + r.String()
}

// TeamLines renders one display line per assignment, in source order
func (m *Match) TeamLines() []string {
	lines := make([]string, 0, len(m.Officials))
	for _, r := range m.Officials {
		lines = append(lines, r.String())
	}
	return lines
}

// StatusLines renders one StatusLine per assignment, in source order
func (m *Match) StatusLines() []string {
	lines := make([]string, 0, len(m.Officials))
	for _, r := range m.Officials {
		lines = append(lines, r.StatusLine())
	}
	return lines
}

// Title renders "Home v. Guest"
func (m *Match) Title() string {
	return m.Home + " v. " + m.Guest
}

// LeagueName returns the display name for the match's league, or the
// league itself when leagueNames has no entry for it
func (m *Match) LeagueName(leagueNames map[string]string) string {
	if name, ok := leagueNames[m.League]; ok && name != "" {
		return name
	}
	return m.League
}

// SlideFields returns the fields a matchday slide is filled with:
// date, time, venue, home, guest, league, referee and, when either is
// assigned, both assistants. Names are split into given names and surname
// on separate lines.
func (m *Match) SlideFields(leagueNames map[string]string) []string {
	var referee, assistant1, assistant2 string
	for _, r := range m.Officials {
		if !r.Filled() {
			continue
		}
		switch r.Role {
		case RoleReferee:
			referee = slideName(r.Name)
		case RoleAssistant1:
			assistant1 = slideName(r.Name)
		case RoleAssistant2:
			assistant2 = slideName(r.Name)
		}
	}

	league := m.League
	if name, ok := leagueNames[m.League]; ok && name != "" {
		league = strings.ToUpper(name)
	}

	fields := []string{
		m.Kickoff.Format("02.01.2006"),
		m.Kickoff.Format("15:04"),
		m.Venue,
		strings.ToUpper(m.Home),
		strings.ToUpper(m.Guest),
		league,
		referee,
	}
	if assistant1 != "" || assistant2 != "" {
		fields = append(fields, assistant1, assistant2)
	}
	return fields
}

// slideName puts the surname on its own line
func slideName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], " ") + "\n" + parts[len(parts)-1]
}
