// Package access decides which referees a signed-in user may view.
//
// Members of the admin group may view any referee. Everyone else sees the
// referees of the configured groups they belong to, plus the referees
// listed on their own user entry. Requests for other referees are dropped.
package access

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pfrederiksen/refsched/internal/config"
	"github.com/pfrederiksen/refsched/internal/crypto"
	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/match"
)

// ErrUnauthorized is returned for unknown users and wrong passwords
var ErrUnauthorized = errors.New("invalid username or password")

// Viewer is an authenticated user
type Viewer struct {
	Name     string
	Groups   []string
	Referees []match.RefereeName
}

// Group is a titled set of referees
type Group struct {
	Title    string              `json:"title"`
	Group    string              `json:"-"`
	Referees []match.RefereeName `json:"referees"`
}

type user struct {
	hash   string
	viewer *Viewer
}

// Authorizer authenticates users and applies their access scope
type Authorizer struct {
	adminGroup string
	users      map[string]user
	groups     []Group
	hasher     *crypto.Hasher
}

// New builds an Authorizer from validated configuration
func New(cfg *config.Config, hasher *crypto.Hasher) (*Authorizer, error) {
	a := &Authorizer{
		adminGroup: cfg.AdminGroup,
		users:      make(map[string]user, len(cfg.Users)),
		groups:     make([]Group, 0, len(cfg.Groups)),
		hasher:     hasher,
	}

	for name, u := range cfg.Users {
		refs, err := match.ParseRefereeNames(u.Referees)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", name, err)
		}
		a.users[name] = user{
			hash:   u.PasswordHash,
			viewer: &Viewer{Name: name, Groups: u.Groups, Referees: refs},
		}
	}

	for title, g := range cfg.Groups {
		refs, err := match.ParseRefereeNames(g.Referees)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", title, err)
		}
		a.groups = append(a.groups, Group{Title: title, Group: g.Group, Referees: refs})
	}
	sort.Slice(a.groups, func(i, j int) bool {
		return a.groups[i].Title < a.groups[j].Title
	})

	return a, nil
}

// Authenticate checks a username and password
func (a *Authorizer) Authenticate(username, password string) (*Viewer, error) {
	u, ok := a.users[username]
	if !ok {
		return nil, ErrUnauthorized
	}

	if err := a.hasher.Verify(u.hash, password); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("verifying password of %s: %w", username, err)
	}

	// Configuration is read-only, so an outdated hash is only reported
	if needs, err := a.hasher.NeedsRehash(u.hash); err == nil && needs {
		logger.Warn("Password hash uses outdated parameters", logger.Fields{
			"user": username,
			"hint": "regenerate it with `refsched hash`",
		})
	}

	return u.viewer, nil
}

// IsAdmin reports whether v may view any referee
func (a *Authorizer) IsAdmin(v *Viewer) bool {
	if v == nil {
		return false
	}
	return contains(v.Groups, a.adminGroup)
}

// Groups returns the groups visible to v, sorted by title
func (a *Authorizer) Groups(v *Viewer) []Group {
	visible := make([]Group, 0, len(a.groups))
	if v == nil {
		return visible
	}
	admin := a.IsAdmin(v)
	for _, g := range a.groups {
		if admin || contains(v.Groups, g.Group) {
			visible = append(visible, g)
		}
	}
	return visible
}

// Allowed returns every referee v may view, sorted. For admins it lists
// the configured referees only, though admins may query any name.
func (a *Authorizer) Allowed(v *Viewer) []match.RefereeName {
	if v == nil {
		return nil
	}

	seen := make(map[match.RefereeName]bool)
	var names []match.RefereeName
	add := func(refs []match.RefereeName) {
		for _, r := range refs {
			if !seen[r] {
				seen[r] = true
				names = append(names, r)
			}
		}
	}

	for _, g := range a.Groups(v) {
		add(g.Referees)
	}
	add(v.Referees)

	match.SortNames(names)
	return names
}

// Filter drops the requested referees v may not view, keeping request order
func (a *Authorizer) Filter(v *Viewer, requested []match.RefereeName) []match.RefereeName {
	if v == nil {
		return nil
	}
	if a.IsAdmin(v) {
		return requested
	}

	allowed := make(map[match.RefereeName]bool)
	for _, n := range a.Allowed(v) {
		allowed[n] = true
	}

	kept := make([]match.RefereeName, 0, len(requested))
	for _, n := range requested {
		if allowed[n] {
			kept = append(kept, n)
		} else {
			logger.Debug("Dropped unauthorized referee", logger.Fields{
				"user":    v.Name,
				"referee": n.Param(),
			})
		}
	}
	return kept
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
