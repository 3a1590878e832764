// Package cli implements the command-line interface for refsched.
//
// The cli package provides the Cobra-based CLI. `show` prints the upcoming
// assignments of one or more referees (text, JSON or iCalendar, grouped by
// referee or by date), `serve` runs the HTTP API and `hash` prints an
// argon2id password hash for the users section of the configuration.
// It loads the configuration once and wires the portal client, session
// manager and schedule service for the command being run.
package cli
