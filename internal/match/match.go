package match

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Role is a referee position code as printed by the portal
type Role string

const (
	RoleReferee    Role = "SR"
	RoleAssistant1 Role = "SRA1"
	RoleAssistant2 Role = "SRA2"
	RoleObserver   Role = "BEO"
	RoleMentor     Role = "PA"
	RoleFourth     Role = "4OF"
)

var roles = map[string]Role{
	string(RoleReferee):    RoleReferee,
	string(RoleAssistant1): RoleAssistant1,
	string(RoleAssistant2): RoleAssistant2,
	string(RoleObserver):   RoleObserver,
	string(RoleMentor):     RoleMentor,
	string(RoleFourth):     RoleFourth,
}

// ParseRole reports whether line is a role token and returns the role.
// Role tokens must match exactly, "SR " or "sr" are not roles.
func ParseRole(line string) (Role, bool) {
	r, ok := roles[line]
	return r, ok
}

// Referee is one person's assignment to a match role.
// An empty Name marks a slot the portal lists without an assigned person.
type Referee struct {
	Role         Role   `json:"role"`
	Name         string `json:"name,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	External     string `json:"external,omitempty"` // cross-assignment note from a "-->" line
	Status       Status `json:"status,omitempty"`
}

// Filled reports whether a person is assigned to the slot
func (r Referee) Filled() bool {
	return r.Name != ""
}

// Equal compares role, name and jurisdiction. Status and External are
// presentation details and do not make two assignments different.
func (r Referee) Equal(other Referee) bool {
	return r.Role == other.Role && r.Name == other.Name && r.Jurisdiction == other.Jurisdiction
}

// Match is one scheduled match with its officiating team
type Match struct {
	Kickoff   time.Time `json:"kickoff"`
	League    string    `json:"league"`
	MatchID   string    `json:"match_id,omitempty"`
	Home      string    `json:"home"`
	Guest     string    `json:"guest"`
	Venue     string    `json:"venue,omitempty"`
	Officials []Referee `json:"officials"`
}

// Equal reports whether both records describe the same match with the same team.
// It is the deduplication rule for the by-day view.
func (m *Match) Equal(other *Match) bool {
	if m == nil || other == nil {
		return m == other
	}
	if !m.Kickoff.Equal(other.Kickoff) ||
		m.League != other.League ||
		m.MatchID != other.MatchID ||
		m.Home != other.Home ||
		m.Venue != other.Venue ||
		m.Guest != other.Guest ||
		len(m.Officials) != len(other.Officials) {
		return false
	}
	for i := range m.Officials {
		if !m.Officials[i].Equal(other.Officials[i]) {
			return false
		}
	}
	return true
}

// Day returns the calendar day of the kickoff
func (m *Match) Day() Day {
	return DayOf(m.Kickoff)
}

// Fingerprint creates a deterministic identifier from the fields Equal compares
func (m *Match) Fingerprint() string {
	var b strings.Builder
	b.WriteString(m.Kickoff.UTC().Format(time.RFC3339))
	for _, f := range []string{m.League, m.MatchID, m.Home, m.Venue, m.Guest} {
		b.WriteString("|")
		b.WriteString(f)
	}
	for _, r := range m.Officials {
		fmt.Fprintf(&b, "|%s:%s:%s", r.Role, r.Name, r.Jurisdiction)
	}

	h := sha1.New()
	h.Write([]byte(b.String()))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Day is a calendar date without time of day or location.
// It is comparable and therefore usable as a map key.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in t's location
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Before reports whether d is an earlier day than other
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Time returns midnight of the day in loc
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText renders the day as YYYY-MM-DD so it can key JSON objects
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
