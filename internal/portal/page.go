package portal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/refsched/internal/match"
	"golang.org/x/net/html"
)

const listingSelector = "table.sportView"

// Outcome classifies a parsed listing page
type Outcome int

const (
	OutcomeOK      Outcome = iota // every row parsed
	OutcomeEmpty                  // the portal reported no entries
	OutcomePartial                // some rows failed in best-effort mode
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomePartial:
		return "partial"
	default:
		return "ok"
	}
}

// RowFailure is a listing row that could not be turned into a match
type RowFailure struct {
	Row int // 1-based position in the listing, header excluded
	Err error
}

func (f RowFailure) Error() string {
	return fmt.Sprintf("row %d: %v", f.Row, f.Err)
}

func (f RowFailure) Unwrap() error {
	return f.Err
}

// Result is the parsed content of one listing page
type Result struct {
	Outcome  Outcome
	Matches  []*match.Match
	Failures []RowFailure
}

// ParsePage parses a search response. Kickoffs are read in loc.
func ParsePage(r io.Reader, policy Policy, loc *time.Location) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return parseDocument(doc, policy, loc)
}

func parseDocument(doc *goquery.Document, policy Policy, loc *time.Location) (*Result, error) {
	table := doc.Find(listingSelector).First()
	if table.Length() == 0 {
		return nil, ErrNoListing
	}

	// Rows of nested tables belong to their cells, not to the listing
	tableNode := table.Get(0)
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").Get(0) == tableNode
	})

	res := &Result{Matches: make([]*match.Match, 0)}
	if rows.Length() < 2 {
		res.Outcome = OutcomeEmpty
		return res, nil
	}

	var parseErr error
	rows.Slice(1, rows.Length()).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.ChildrenFiltered("td")
		cells := make([]string, tds.Length())
		tds.Each(func(j int, td *goquery.Selection) {
			cells[j] = cellText(td.Get(0))
		})

		if match.IsNoEntries(cells) {
			res.Matches = res.Matches[:0]
			res.Failures = nil
			res.Outcome = OutcomeEmpty
			return false
		}

		var statuses []match.Status
		if tds.Length() > match.TeamColumn {
			statuses = match.DecodeIcons(iconAlts(tds.Eq(match.TeamColumn)))
		}

		m, err := match.NewMatch(cells, statuses, loc)
		if err != nil {
			failure := RowFailure{Row: i + 1, Err: err}
			if policy == PolicyStrict {
				parseErr = failure
				return false
			}
			res.Failures = append(res.Failures, failure)
			return true
		}
		res.Matches = append(res.Matches, m)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	switch {
	case res.Outcome == OutcomeEmpty:
	case len(res.Failures) > 0:
		res.Outcome = OutcomePartial
	case len(res.Matches) == 0:
		res.Outcome = OutcomeEmpty
	default:
		res.Outcome = OutcomeOK
	}
	return res, nil
}

// cellText joins the cell's non-empty text nodes with newlines.
// Non-breaking spaces count as spaces.
func cellText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(strings.ReplaceAll(n.Data, "\u00a0", " "))
			if text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}

func iconAlts(cell *goquery.Selection) []string {
	var alts []string
	cell.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		alts = append(alts, alt)
	})
	return alts
}
