package match

import "strings"

// Status is the single glyph shown for an assignment's confirmation state
type Status string

const (
	StatusConfirmed   Status = "✓"
	StatusUnconfirmed Status = "❓"
	StatusProvisional Status = "✘"
)

// Alt texts of the portal's status icons
const (
	AltConfirmed   = "Ansetzung bestätigt."
	AltUnconfirmed = "Ansetzung nicht bestätigt."
	AltProvisional = "Vorläufige Einteilung"
)

var iconStatus = map[string]Status{
	AltConfirmed:   StatusConfirmed,
	AltUnconfirmed: StatusUnconfirmed,
	AltProvisional: StatusProvisional,
}

// DecodeIcon maps an icon alt text to its status
func DecodeIcon(alt string) (Status, bool) {
	s, ok := iconStatus[strings.TrimSpace(alt)]
	return s, ok
}

// DecodeIcons maps icon alt texts to statuses in order.
// Icons with unknown alt text are decorative and are dropped.
func DecodeIcons(alts []string) []Status {
	statuses := make([]Status, 0, len(alts))
	for _, alt := range alts {
		if s, ok := DecodeIcon(alt); ok {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
