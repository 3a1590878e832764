// Package schedule assembles the by-referee and by-day views from portal searches.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/portal"
)

// ErrUnavailable marks failures of the portal itself: login, transport or an
// expired session. Callers show a "temporarily unavailable" message.
var ErrUnavailable = errors.New("portal temporarily unavailable")

// Searcher runs one referee search on a session
type Searcher interface {
	Search(ctx context.Context, sess *portal.Session, name match.RefereeName) (*portal.Result, error)
}

// Sessions hands out the shared portal session
type Sessions interface {
	Get(ctx context.Context) (*portal.Session, error)
	Invalidate(stale *portal.Session)
}

// Failure is a listing row skipped while searching for a referee
type Failure struct {
	Referee match.RefereeName
	portal.RowFailure
}

// Schedule is the result of one rendering pass
type Schedule struct {
	Referees  []match.RefereeName
	ByReferee match.ByReferee
	ByDay     match.ByDay
	Failures  []Failure
}

// Empty reports whether no referee was queried
func (s *Schedule) Empty() bool {
	return len(s.Referees) == 0
}

// Service runs the searches for a set of referees
type Service struct {
	searcher Searcher
	sessions Sessions
}

// NewService creates a Service
func NewService(searcher Searcher, sessions Sessions) *Service {
	return &Service{
		searcher: searcher,
		sessions: sessions,
	}
}

// Build searches each referee in turn and groups the results.
// Duplicate names are searched once. No names yields an empty schedule
// without touching the portal.
func (s *Service) Build(ctx context.Context, names []match.RefereeName) (*Schedule, error) {
	sched := &Schedule{
		Referees:  unique(names),
		ByReferee: make(match.ByReferee),
		ByDay:     make(match.ByDay),
	}
	if sched.Empty() {
		return sched, nil
	}

	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	for _, name := range sched.Referees {
		res, err := s.searcher.Search(ctx, sess, name)
		if err != nil {
			var parseErr *match.ParseError
			if errors.As(err, &parseErr) {
				return nil, err
			}
			if errors.Is(err, portal.ErrNoListing) {
				s.sessions.Invalidate(sess)
			}
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		sched.ByReferee[name] = res.Matches
		for _, f := range res.Failures {
			sched.Failures = append(sched.Failures, Failure{Referee: name, RowFailure: f})
		}
	}

	sched.ByDay = match.GroupByDay(sched.ByReferee)

	logger.Info("Schedule built", logger.Fields{
		"referees": len(sched.Referees),
		"matches":  sched.ByDay.Total(),
		"days":     len(sched.ByDay),
		"failures": len(sched.Failures),
	})

	return sched, nil
}

func unique(names []match.RefereeName) []match.RefereeName {
	seen := make(map[match.RefereeName]bool, len(names))
	out := make([]match.RefereeName, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
