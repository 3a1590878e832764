// Package portal talks to the referee assignment portal.
//
// A Client performs the portal's multi-step login (landing page, login form,
// credential post, then two navigation links) and yields a Session, an
// authenticated cookie-jar HTTP client positioned on the assignment search.
// Client.Search posts the search form for one referee and parses the listing
// table into match records.
//
// Sessions are expensive to build, so callers share one through a
// SessionManager, which rebuilds it when it is missing or older than the
// staleness threshold. Concurrent callers never build two sessions.
//
// Listing rows are parsed independently. In best-effort mode a row that
// cannot be parsed is reported as a RowFailure next to the records that did
// parse; in strict mode it fails the whole page.
package portal
