package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/pfrederiksen/refsched/internal/logger"
	"golang.org/x/net/publicsuffix"
)

const loginFormSelector = "form#kc-form-login"

// Session is an authenticated portal handle positioned on the assignment search
type Session struct {
	client    *http.Client
	searchURL string
	built     time.Time
}

// Built returns when the session finished logging in
func (s *Session) Built() time.Time {
	return s.built
}

// Login walks the portal's login flow and returns a ready Session.
//
// The flow is: landing page (seeds cookies), login page, post the credentials
// to the login form's action, then follow the assignment link and the search
// link by their exact text. A missing form or link is a *NavigationError.
func (c *Client) Login(ctx context.Context, creds Credentials) (sess *Session, err error) {
	defer func() {
		c.opts.Metrics.RecordLogin(err)
	}()

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	hc := &http.Client{
		Jar:     jar,
		Timeout: c.opts.Timeout,
	}

	landing, err := c.resolve(c.opts.LandingPath)
	if err != nil {
		return nil, err
	}
	if _, _, err := c.fetch(ctx, hc, landing, nil); err != nil {
		return nil, fmt.Errorf("opening landing page: %w", err)
	}

	loginURL, err := c.resolve(c.opts.LoginPath)
	if err != nil {
		return nil, err
	}
	doc, page, err := c.fetch(ctx, hc, loginURL, nil)
	if err != nil {
		return nil, fmt.Errorf("opening login page: %w", err)
	}

	action, ok := doc.Find(loginFormSelector).Attr("action")
	if !ok {
		return nil, &NavigationError{Step: StepLoginForm, Want: loginFormSelector, URL: page.String()}
	}
	target, err := resolveOn(page, action)
	if err != nil {
		return nil, err
	}

	doc, page, err = c.fetch(ctx, hc, target, url.Values{
		"username":     {creds.Username},
		"password":     {creds.Password},
		"credentialId": {""},
	})
	if err != nil {
		return nil, fmt.Errorf("submitting credentials: %w", err)
	}

	for _, link := range []struct{ step, text string }{
		{StepAssignmentLink, c.opts.AssignmentLink},
		{StepSearchLink, c.opts.SearchLink},
	} {
		href, ok := findLink(doc, link.text)
		if !ok {
			return nil, &NavigationError{Step: link.step, Want: link.text, URL: page.String()}
		}
		target, err := resolveOn(page, href)
		if err != nil {
			return nil, err
		}
		doc, page, err = c.fetch(ctx, hc, target, nil)
		if err != nil {
			return nil, fmt.Errorf("following %s: %w", link.step, err)
		}
	}

	searchURL, err := c.resolve(c.opts.SearchPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("Portal login complete", logger.Fields{
		"user":   creds.Username,
		"search": searchURL,
	})

	return &Session{
		client:    hc,
		searchURL: searchURL,
		built:     c.now(),
	}, nil
}
