// Package config defines the refsched configuration and its loader.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then REFSCHED_* environment variables. Nested keys use a double
// underscore in the environment, e.g. REFSCHED_PORTAL__PASSWORD sets
// portal.password.
//
// A Config is validated once after loading and treated as read-only after.
package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // minimal images ship without a zoneinfo database

	"github.com/pfrederiksen/refsched/internal/metrics"
	"github.com/pfrederiksen/refsched/internal/portal"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8050".
	Addr string `koanf:"addr"`

	// AdminGroup names the user group that may view any referee.
	AdminGroup string `koanf:"admin_group"`

	Portal Portal `koanf:"portal"`

	// Users maps login names to their access scope.
	Users map[string]User `koanf:"users"`

	// Groups maps display titles to referee groups.
	Groups map[string]Group `koanf:"groups"`

	// LeagueNames maps portal league names to display names for exports.
	LeagueNames map[string]string `koanf:"league_names"`

	// Telegram is where `refsched check --notify` reports changes.
	Telegram Telegram `koanf:"telegram"`
}

// Telegram configures the change notification chat.
type Telegram struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

// Portal configures the portal client and its account.
type Portal struct {
	BaseURL        string        `koanf:"base_url"`
	LandingPath    string        `koanf:"landing_path"`
	LoginPath      string        `koanf:"login_path"`
	SearchPath     string        `koanf:"search_path"`
	AssignmentLink string        `koanf:"assignment_link"`
	SearchLink     string        `koanf:"search_link"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	UserAgent      string        `koanf:"user_agent"`
	Timeout        time.Duration `koanf:"timeout"`
	Staleness      time.Duration `koanf:"staleness"`
	WindowDays     int           `koanf:"window_days"`
	Timezone       string        `koanf:"timezone"`
	Strict         bool          `koanf:"strict"`
}

// User is one login with the referees it may view.
type User struct {
	// PasswordHash is an argon2id PHC string, see `refsched hash`.
	PasswordHash string   `koanf:"password_hash"`
	Groups       []string `koanf:"groups"`
	Referees     []string `koanf:"referees"`
}

// Group is a titled set of referees visible to members of Group.
type Group struct {
	Group    string   `koanf:"group"`
	Referees []string `koanf:"referees"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		Addr:       ":8050",
		AdminGroup: "admin",
		Portal: Portal{
			BaseURL:        portal.DefaultBaseURL,
			LandingPath:    portal.DefaultLandingPath,
			LoginPath:      portal.DefaultLoginPath,
			SearchPath:     portal.DefaultSearchPath,
			AssignmentLink: portal.DefaultAssignmentLink,
			SearchLink:     portal.DefaultSearchLink,
			UserAgent:      portal.UserAgent,
			Timeout:        portal.Timeout,
			Staleness:      portal.DefaultStaleness,
			WindowDays:     portal.DefaultWindowDays,
			Timezone:       "Europe/Berlin",
		},
		Users:       make(map[string]User),
		Groups:      make(map[string]Group),
		LeagueNames: make(map[string]string),
	}
}

// Location loads the portal's time zone.
func (p Portal) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// Credentials returns the portal account.
func (p Portal) Credentials() portal.Credentials {
	return portal.Credentials{Username: p.Username, Password: p.Password}
}

// Options converts the settings to portal client options.
func (p Portal) Options(m *metrics.Metrics) (portal.Options, error) {
	loc, err := p.Location()
	if err != nil {
		return portal.Options{}, err
	}

	policy := portal.PolicyBestEffort
	if p.Strict {
		policy = portal.PolicyStrict
	}

	return portal.Options{
		BaseURL:        p.BaseURL,
		LandingPath:    p.LandingPath,
		LoginPath:      p.LoginPath,
		SearchPath:     p.SearchPath,
		AssignmentLink: p.AssignmentLink,
		SearchLink:     p.SearchLink,
		UserAgent:      p.UserAgent,
		Timeout:        p.Timeout,
		WindowDays:     p.WindowDays,
		Location:       loc,
		Policy:         policy,
		Metrics:        m,
	}, nil
}
