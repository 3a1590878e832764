package portal

import (
	"errors"
	"fmt"
)

// ErrNoListing is returned when a search response has no listing table,
// usually because the session expired on the portal side
var ErrNoListing = errors.New("listing table not found")

// Navigation steps of the login flow
const (
	StepLoginForm      = "login form"
	StepAssignmentLink = "assignment link"
	StepSearchLink     = "search link"
)

// NavigationError reports a login step whose form or link was missing
type NavigationError struct {
	Step string // login step that failed
	Want string // form selector or link text looked for
	URL  string // page that was searched
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("portal navigation failed at %s: %q not found on %s", e.Step, e.Want, e.URL)
}
