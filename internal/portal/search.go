package portal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/match"
)

const dateLayout = "02.01.2006"

// searchForm builds the assignment search for one referee, covering the
// configured number of days from today
func (c *Client) searchForm(name match.RefereeName) url.Values {
	return url.Values{
		"staffel":    {""},
		"msa_id":     {"0"},
		"status":     {"4"},
		"date":       {c.now().In(c.opts.Location).Format(dateLayout)},
		"datedelta":  {strconv.Itoa(c.opts.WindowDays)},
		"srvorname":  {name.FirstName},
		"srnachname": {name.Surname},
		"spieltag":   {""},
	}
}

// Search lists the upcoming assignments of one referee
func (c *Client) Search(ctx context.Context, sess *Session, name match.RefereeName) (*Result, error) {
	if sess == nil {
		return nil, errors.New("searching without a session")
	}

	start := time.Now()
	doc, _, err := c.fetch(ctx, sess.client, sess.searchURL, c.searchForm(name))
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", name, err)
	}

	res, err := parseDocument(doc, c.opts.Policy, c.opts.Location)
	if err != nil {
		c.opts.Metrics.RecordSearch("failed", 0, time.Since(start))
		return nil, fmt.Errorf("searching %s: %w", name, err)
	}

	if len(res.Failures) > 0 {
		logger.Warn("Skipped unparseable listing rows", logger.Fields{
			"referee":  name.Param(),
			"failures": len(res.Failures),
			"first":    res.Failures[0].Error(),
		})
	}
	c.opts.Metrics.RecordSearch(res.Outcome.String(), len(res.Failures), time.Since(start))

	return res, nil
}
