package config

import (
	"fmt"
	"net/url"

	"github.com/pfrederiksen/refsched/internal/crypto"
	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/match"
)

// Validate checks the configuration once after loading. requirePortal
// demands portal credentials, which only commands that search need.
func (c *Config) Validate(requirePortal bool) error {
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level: %v", err)
	}

	if err := c.Portal.validate(requirePortal); err != nil {
		return err
	}

	for name, u := range c.Users {
		if u.PasswordHash == "" {
			return invalid("users.%s: password_hash must not be empty", name)
		}
		if err := crypto.Validate(u.PasswordHash); err != nil {
			return invalid("users.%s.password_hash: %v", name, err)
		}
		if _, err := match.ParseRefereeNames(u.Referees); err != nil {
			return invalid("users.%s.referees: %v", name, err)
		}
	}

	for title, g := range c.Groups {
		if g.Group == "" {
			return invalid("groups.%s: group must not be empty", title)
		}
		if _, err := match.ParseRefereeNames(g.Referees); err != nil {
			return invalid("groups.%s.referees: %v", title, err)
		}
	}

	return nil
}

func (p Portal) validate(requireCredentials bool) error {
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("portal.base_url %q must be an absolute URL", p.BaseURL)
	}
	if p.Timeout <= 0 {
		return invalid("portal.timeout must be positive")
	}
	if p.Staleness <= 0 {
		return invalid("portal.staleness must be positive")
	}
	if p.WindowDays <= 0 {
		return invalid("portal.window_days must be positive")
	}
	if _, err := p.Location(); err != nil {
		return invalid("portal.timezone: %v", err)
	}
	if requireCredentials && (p.Username == "" || p.Password == "") {
		return invalid("portal.username and portal.password are required")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
