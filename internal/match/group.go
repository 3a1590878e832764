package match

import (
	"fmt"
	"sort"
	"strings"
)

// RefereeName identifies a queried referee by surname and first name.
// In JSON and other text encodings it is its "Surname_FirstName" form.
type RefereeName struct {
	Surname   string
	FirstName string
}

// ParseRefereeName parses the "Surname_FirstName" form used in links and config
func ParseRefereeName(s string) (RefereeName, error) {
	parts := strings.Split(strings.TrimSpace(s), "_")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return RefereeName{}, fmt.Errorf("invalid referee %q (want Surname_FirstName)", s)
	}
	return RefereeName{
		Surname:   strings.TrimSpace(parts[0]),
		FirstName: strings.TrimSpace(parts[1]),
	}, nil
}

// ParseRefereeNames parses several names, failing on the first invalid one
func ParseRefereeNames(values []string) ([]RefereeName, error) {
	names := make([]RefereeName, 0, len(values))
	for _, v := range values {
		n, err := ParseRefereeName(v)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// String renders the name as the listing heading, "Surname FirstName"
func (n RefereeName) String() string {
	return n.Surname + " " + n.FirstName
}

// Param renders the name in its "Surname_FirstName" form
func (n RefereeName) Param() string {
	return n.Surname + "_" + n.FirstName
}

// MarshalText encodes the name in its "Surname_FirstName" form
func (n RefereeName) MarshalText() ([]byte, error) {
	return []byte(n.Param()), nil
}

// UnmarshalText parses the "Surname_FirstName" form
func (n *RefereeName) UnmarshalText(b []byte) error {
	parsed, err := ParseRefereeName(string(b))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ByReferee holds the matches found for each queried referee
type ByReferee map[RefereeName][]*Match

// Names returns the referees sorted by surname, then first name
func (g ByReferee) Names() []RefereeName {
	names := make([]RefereeName, 0, len(g))
	for n := range g {
		names = append(names, n)
	}
	SortNames(names)
	return names
}

// Total returns the number of records across all referees
func (g ByReferee) Total() int {
	total := 0
	for _, ms := range g {
		total += len(ms)
	}
	return total
}

// SortNames sorts names by surname, then first name, case-insensitively
func SortNames(names []RefereeName) {
	sort.Slice(names, func(i, j int) bool {
		si, sj := strings.ToLower(names[i].Surname), strings.ToLower(names[j].Surname)
		if si != sj {
			return si < sj
		}
		return strings.ToLower(names[i].FirstName) < strings.ToLower(names[j].FirstName)
	})
}

// ByDay holds deduplicated matches per calendar day
type ByDay map[Day][]*Match

// Add inserts m into its day unless an equal record is already there.
// It reports whether m was added.
func (g ByDay) Add(m *Match) bool {
	day := m.Day()
	for _, existing := range g[day] {
		if existing.Equal(m) {
			return false
		}
	}
	g[day] = append(g[day], m)
	return true
}

// Days returns the days in chronological order
func (g ByDay) Days() []Day {
	days := make([]Day, 0, len(g))
	for d := range g {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// Total returns the number of distinct records across all days
func (g ByDay) Total() int {
	total := 0
	for _, ms := range g {
		total += len(ms)
	}
	return total
}

// GroupByDay regroups per-referee results by calendar day, dropping records
// that several referees share. Each day's matches are sorted by kickoff.
func GroupByDay(byRef ByReferee) ByDay {
	days := make(ByDay)
	for _, name := range byRef.Names() {
		for _, m := range byRef[name] {
			days.Add(m)
		}
	}
	for d := range days {
		SortByKickoff(days[d])
	}
	return days
}

// SortByKickoff sorts matches chronologically, keeping source order for ties
func SortByKickoff(matches []*Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Kickoff.Before(matches[j].Kickoff)
	})
}
