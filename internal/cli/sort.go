package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/refsched/internal/schedule"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortAsListed  SortOrder = ""
	SortByKickoff SortOrder = "kickoff"
	SortByLeague  SortOrder = "league"
	SortByHome    SortOrder = "home"
)

// Valid reports whether o is a known sort order
func (o SortOrder) Valid() bool {
	switch o {
	case SortAsListed, SortByKickoff, SortByLeague, SortByHome:
		return true
	}
	return false
}

// sortMatches sorts a section's matches based on the specified sort order.
// SortAsListed keeps the portal's order.
func sortMatches(matches []schedule.MatchView, sortOrder SortOrder) {
	switch sortOrder {
	case SortByKickoff:
		sort.SliceStable(matches, func(i, j int) bool {
			return compareByKickoff(matches[i], matches[j])
		})
	case SortByLeague:
		sort.SliceStable(matches, func(i, j int) bool {
			li, lj := strings.ToLower(matches[i].LeagueName), strings.ToLower(matches[j].LeagueName)
			if li != lj {
				return li < lj
			}
			// If leagues are equal, sort by kickoff
			return compareByKickoff(matches[i], matches[j])
		})
	case SortByHome:
		sort.SliceStable(matches, func(i, j int) bool {
			hi, hj := strings.ToLower(matches[i].Home), strings.ToLower(matches[j].Home)
			if hi != hj {
				return hi < hj
			}
			return compareByKickoff(matches[i], matches[j])
		})
	}
}

// compareByKickoff returns true if match i kicks off before match j.
// Simultaneous kickoffs fall back to the home team.
func compareByKickoff(i, j schedule.MatchView) bool {
	if !i.Kickoff.Equal(j.Kickoff) {
		return i.Kickoff.Before(j.Kickoff)
	}
	return strings.ToLower(i.Home) < strings.ToLower(j.Home)
}
