package match

import (
	"fmt"
	"strings"
	"time"
)

// NoEntriesText is what the portal prints in the listing when a search has no matches
const NoEntriesText = "Keine Einträge gefunden!"

// Column positions in a listing row
const (
	colKickoff = 1
	colLeague  = 2
	colHome    = 4
	colGuest   = 5
	colTeam    = 7
	minCells   = colTeam + 1
)

// TeamColumn is the index of the cell holding the officiating team and its status icons
const TeamColumn = colTeam

// IsNoEntries reports whether a row is the portal's "no entries found" marker
func IsNoEntries(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) == NoEntriesText {
			return true
		}
	}
	return false
}

// NewMatch builds a match from one listing row.
//
// cells are the row's cell texts with sub-fields separated by newlines and
// statuses the decoded icons of the team cell. Kickoffs are read in loc.
func NewMatch(cells []string, statuses []Status, loc *time.Location) (*Match, error) {
	if len(cells) < minCells {
		return nil, &ParseError{
			Field: "row",
			Value: strings.Join(cells, " | "),
			Err:   fmt.Errorf("expected at least %d cells, got %d", minCells, len(cells)),
		}
	}

	kickoff, err := ParseKickoff(cells[colKickoff], loc)
	if err != nil {
		return nil, err
	}

	league, matchID := SplitLeague(cells[colLeague])
	home, venue := SplitHome(cells[colHome])

	return &Match{
		Kickoff:   kickoff,
		League:    league,
		MatchID:   matchID,
		Home:      home,
		Guest:     strings.Join(strings.Fields(cells[colGuest]), " "),
		Venue:     venue,
		Officials: ParseTeam(cells[colTeam], statuses),
	}, nil
}
