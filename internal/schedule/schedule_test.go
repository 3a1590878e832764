package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/portal"
)

type fakeSearcher struct {
	results  map[match.RefereeName]*portal.Result
	errs     map[match.RefereeName]error
	searched []match.RefereeName
}

func (f *fakeSearcher) Search(ctx context.Context, sess *portal.Session, name match.RefereeName) (*portal.Result, error) {
	f.searched = append(f.searched, name)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	if res, ok := f.results[name]; ok {
		return res, nil
	}
	return &portal.Result{Outcome: portal.OutcomeEmpty}, nil
}

type fakeSessions struct {
	gets        int
	invalidated int
	err         error
	current     *portal.Session
	stale       *portal.Session
}

func (f *fakeSessions) Get(ctx context.Context) (*portal.Session, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	f.current = &portal.Session{}
	return f.current, nil
}

func (f *fakeSessions) Invalidate(stale *portal.Session) {
	f.invalidated++
	f.stale = stale
}

var (
	muster   = match.RefereeName{Surname: "Muster", FirstName: "Max"}
	beispiel = match.RefereeName{Surname: "Beispiel", FirstName: "Erika"}
)

func newMatch(day, hour int, home string) *match.Match {
	return &match.Match{
		Kickoff: time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC),
		League:  "Kreisliga",
		Home:    home,
		Guest:   "Gast",
		Officials: []match.Referee{
			{Role: match.RoleReferee, Name: "Max", Jurisdiction: "X"},
		},
	}
}

func TestBuild(t *testing.T) {
	shared := newMatch(2, 15, "TSV")
	searcher := &fakeSearcher{
		results: map[match.RefereeName]*portal.Result{
			muster: {
				Outcome: portal.OutcomePartial,
				Matches: []*match.Match{shared, newMatch(9, 11, "SV")},
				Failures: []portal.RowFailure{
					{Row: 3, Err: &match.ParseError{Field: "kickoff", Value: "tbd", Err: errors.New("bad")}},
				},
			},
			beispiel: {
				Outcome: portal.OutcomeOK,
				Matches: []*match.Match{newMatch(2, 15, "TSV")},
			},
		},
	}
	sessions := &fakeSessions{}
	svc := NewService(searcher, sessions)

	sched, err := svc.Build(context.Background(), []match.RefereeName{muster, beispiel, muster})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(searcher.searched) != 2 {
		t.Errorf("searched %d names, want 2 (duplicates once)", len(searcher.searched))
	}
	if sessions.gets != 1 {
		t.Errorf("session fetched %d times, want 1", sessions.gets)
	}
	if sched.ByReferee.Total() != 3 {
		t.Errorf("by-referee total = %d, want 3", sched.ByReferee.Total())
	}
	if sched.ByDay.Total() != 2 {
		t.Errorf("by-day total = %d, want 2 (shared match deduplicated)", sched.ByDay.Total())
	}
	if len(sched.Failures) != 1 || sched.Failures[0].Referee != muster || sched.Failures[0].Row != 3 {
		t.Errorf("Failures = %+v, want one row 3 failure for %v", sched.Failures, muster)
	}
}

func TestBuild_NoNames(t *testing.T) {
	sessions := &fakeSessions{}
	svc := NewService(&fakeSearcher{}, sessions)

	sched, err := svc.Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !sched.Empty() {
		t.Error("Empty() = false for no names")
	}
	if sessions.gets != 0 {
		t.Error("empty schedule logged in to the portal")
	}
	if sched.ByDay == nil || sched.ByReferee == nil {
		t.Error("empty schedule has nil views")
	}
}

func TestBuild_Errors(t *testing.T) {
	parseErr := &match.ParseError{Field: "kickoff", Value: "tbd", Err: errors.New("bad")}

	tests := []struct {
		name            string
		sessionErr      error
		searchErr       error
		wantUnavailable bool
		wantInvalidated int
	}{
		{
			name:            "login fails",
			sessionErr:      &portal.NavigationError{Step: portal.StepLoginForm},
			wantUnavailable: true,
		},
		{
			name:            "expired session",
			searchErr:       portal.ErrNoListing,
			wantUnavailable: true,
			wantInvalidated: 1,
		},
		{
			name:            "transport error",
			searchErr:       errors.New("connection reset"),
			wantUnavailable: true,
		},
		{
			name:      "strict parse failure",
			searchErr: portal.RowFailure{Row: 1, Err: parseErr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{err: tt.sessionErr}
			searcher := &fakeSearcher{errs: map[match.RefereeName]error{muster: tt.searchErr}}
			svc := NewService(searcher, sessions)

			_, err := svc.Build(context.Background(), []match.RefereeName{muster})
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if got := errors.Is(err, ErrUnavailable); got != tt.wantUnavailable {
				t.Errorf("errors.Is(err, ErrUnavailable) = %v, want %v (err: %v)", got, tt.wantUnavailable, err)
			}
			if sessions.invalidated != tt.wantInvalidated {
				t.Errorf("invalidated = %d, want %d", sessions.invalidated, tt.wantInvalidated)
			}
			if tt.wantInvalidated > 0 && sessions.stale != sessions.current {
				t.Error("invalidated a session other than the one the search used")
			}
		})
	}
}
