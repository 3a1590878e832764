package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/refsched/internal/logger"
)

// fetch performs one portal round trip and parses the response as HTML.
// A non-nil form turns the request into a urlencoded POST.
// It returns the document and the final URL after redirects.
func (c *Client) fetch(ctx context.Context, hc *http.Client, target string, form url.Values) (*goquery.Document, *url.URL, error) {
	method := http.MethodGet
	var body io.Reader
	if form != nil {
		method = http.MethodPost
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	logger.Debug("Portal request", logger.Fields{
		"method":  method,
		"url":     target,
		"status":  resp.StatusCode,
		"took_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("fetching %s: unexpected status code: %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, resp.Request.URL, nil
}

// findLink returns the href of the first anchor whose text is exactly text
func findLink(doc *goquery.Document, text string) (string, bool) {
	var href string
	var found bool
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.Text() != text {
			return true
		}
		href, found = a.Attr("href")
		return false
	})
	return href, found
}

// resolveOn resolves a link or form action against the page it was found on
func resolveOn(page *url.URL, ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", ref, err)
	}
	return page.ResolveReference(u).String(), nil
}
