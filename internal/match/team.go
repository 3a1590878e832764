package match

import "strings"

const (
	// externalMarker prefixes a cross-assignment note, e.g. "--> Kreis Nord"
	externalMarker = "-->"
	// attendanceMarker lines carry attendance info and are ignored
	attendanceMarker = "ATS"
)

// ParseTeam reconstructs the officiating team from a team cell.
//
// Each line of the cell is a role token, an external marker, an attendance
// marker or a name. A name line is followed by the referee's jurisdiction.
// The portal never marks an empty slot: a role token that is followed by
// another role token, or ends the cell, is an unfilled slot.
//
// statuses holds one glyph per filled slot, in order. Slots beyond the
// available glyphs keep an empty Status.
func ParseTeam(cell string, statuses []Status) []Referee {
	var (
		team    []Referee
		current *Referee
		marker  string
	)

	flush := func() {
		if current != nil {
			current.External = marker
			team = append(team, *current)
		}
		current = nil
		marker = ""
	}

	for _, line := range strings.Split(cell, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case line == "" || strings.Contains(line, attendanceMarker):
			continue
		case strings.Contains(line, externalMarker):
			marker = strings.TrimSpace(strings.ReplaceAll(line, externalMarker, ""))
			continue
		}

		if role, ok := ParseRole(line); ok {
			flush()
			current = &Referee{Role: role}
			continue
		}

		// Names outside an open role have nothing to attach to
		if current == nil {
			continue
		}
		switch {
		case current.Name == "":
			current.Name = line
		case current.Jurisdiction == "":
			current.Jurisdiction = normalizeJurisdiction(line)
		}
	}
	flush()

	next := 0
	for i := range team {
		if !team[i].Filled() || next >= len(statuses) {
			continue
		}
		team[i].Status = statuses[next]
		next++
	}

	return team
}

// normalizeJurisdiction strips the parentheses the portal sometimes prints around the code
func normalizeJurisdiction(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.TrimSpace(s)
}
