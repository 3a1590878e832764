package portal

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pfrederiksen/refsched/internal/metrics"
)

const (
	DefaultBaseURL        = "https://www.dfbnet.org"
	DefaultLandingPath    = "/spielplus/login.do"
	DefaultLoginPath      = "/spielplus/oauth/login"
	DefaultSearchPath     = "/sria/mod_sria/offenespielelist.do?reqCode=view"
	DefaultAssignmentLink = "Schiriansetzung"
	DefaultSearchLink     = "Ansetzung"
	DefaultWindowDays     = 999

	UserAgent = "refsched/1.0 (github.com/pfrederiksen/refsched)"
	Timeout   = 30 * time.Second
)

// Policy controls how a listing page treats rows it cannot parse
type Policy int

const (
	// PolicyBestEffort skips bad rows and reports them as failures
	PolicyBestEffort Policy = iota
	// PolicyStrict fails the whole page on the first bad row
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "best-effort"
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL        string
	LandingPath    string
	LoginPath      string
	SearchPath     string
	AssignmentLink string
	SearchLink     string
	UserAgent      string
	Timeout        time.Duration
	WindowDays     int
	Location       *time.Location
	Policy         Policy
	Metrics        *metrics.Metrics
}

// Credentials are the portal account used to log in
type Credentials struct {
	Username string
	Password string
}

// Client navigates and searches the portal
type Client struct {
	opts Options
	base *url.URL
	now  func() time.Time
}

// New creates a Client, filling unset options with the portal defaults
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.LandingPath == "" {
		opts.LandingPath = DefaultLandingPath
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	if opts.SearchPath == "" {
		opts.SearchPath = DefaultSearchPath
	}
	if opts.AssignmentLink == "" {
		opts.AssignmentLink = DefaultAssignmentLink
	}
	if opts.SearchLink == "" {
		opts.SearchLink = DefaultSearchLink
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}

	return &Client{
		opts: opts,
		base: base,
		now:  time.Now,
	}, nil
}

// Policy returns the row failure policy the client parses listings with
func (c *Client) Policy() Policy {
	return c.opts.Policy
}

// resolve turns a configured path into an absolute URL on the portal
func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}
