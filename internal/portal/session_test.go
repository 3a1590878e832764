package portal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeAuth struct {
	logins atomic.Int32
	delay  time.Duration
	err    error
}

func (a *fakeAuth) Login(ctx context.Context, creds Credentials) (*Session, error) {
	a.logins.Add(1)
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if a.err != nil {
		return nil, a.err
	}
	return &Session{searchURL: "http://portal.test/search"}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(auth Authenticator) (*SessionManager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)}
	m := NewSessionManager(auth, Credentials{Username: "user", Password: "secret"}, DefaultStaleness, nil)
	m.now = clock.Now
	return m, clock
}

func TestSessionManager_Staleness(t *testing.T) {
	auth := &fakeAuth{}
	m, clock := newTestManager(auth)
	ctx := context.Background()

	first, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	clock.Advance(5 * time.Minute)
	again, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if again != first {
		t.Error("fresh session was not reused")
	}
	if got := auth.logins.Load(); got != 1 {
		t.Errorf("logins after reuse = %d, want 1", got)
	}

	clock.Advance(11 * time.Minute) // T+16m
	rebuilt, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if rebuilt == first {
		t.Error("stale session was reused")
	}
	if got := auth.logins.Load(); got != 2 {
		t.Errorf("logins after staleness = %d, want exactly one rebuild (2 total)", got)
	}

	if _, err := m.Get(ctx); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got := auth.logins.Load(); got != 2 {
		t.Errorf("logins after rebuild = %d, want 2", got)
	}
}

func TestSessionManager_Invalidate(t *testing.T) {
	auth := &fakeAuth{}
	m, _ := newTestManager(auth)
	ctx := context.Background()

	sess, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	m.Invalidate(sess)
	if _, err := m.Get(ctx); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if got := auth.logins.Load(); got != 2 {
		t.Errorf("logins = %d, want 2", got)
	}
}

func TestSessionManager_InvalidateKeepsNewerSession(t *testing.T) {
	auth := &fakeAuth{}
	m, clock := newTestManager(auth)
	ctx := context.Background()

	old, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	// another caller rebuilds while the old session is still in use
	clock.Advance(16 * time.Minute)
	fresh, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if fresh == old {
		t.Fatal("stale session was reused")
	}

	m.Invalidate(old)
	m.Invalidate(nil)

	current, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if current != fresh {
		t.Error("invalidating an outdated session dropped the current one")
	}
	if got := auth.logins.Load(); got != 2 {
		t.Errorf("logins = %d, want 2", got)
	}
}

func TestSessionManager_LoginError(t *testing.T) {
	loginErr := &NavigationError{Step: StepAssignmentLink, Want: DefaultAssignmentLink, URL: "http://portal.test"}
	auth := &fakeAuth{err: loginErr}
	m, _ := newTestManager(auth)

	_, err := m.Get(context.Background())
	var navErr *NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("Get() error = %v, want *NavigationError", err)
	}

	// A failed build is retried on the next call
	auth.err = nil
	if _, err := m.Get(context.Background()); err != nil {
		t.Fatalf("Get() after recovery error: %v", err)
	}
	if got := auth.logins.Load(); got != 2 {
		t.Errorf("logins = %d, want 2", got)
	}
}

func TestSessionManager_Concurrent(t *testing.T) {
	auth := &fakeAuth{delay: 20 * time.Millisecond}
	m, _ := newTestManager(auth)

	const callers = 20
	sessions := make([]*Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.Get(context.Background())
			if err != nil {
				t.Errorf("Get() error: %v", err)
				return
			}
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	if got := auth.logins.Load(); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
	for i, s := range sessions {
		if s != sessions[0] {
			t.Errorf("caller %d got a different session", i)
		}
	}
}

func TestSessionManager_WithClient(t *testing.T) {
	fp := newFakePortal(t)
	c := newTestClient(t, fp, PolicyBestEffort)
	m := NewSessionManager(c, Credentials{Username: "user", Password: "secret"}, 0, nil)

	sess, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if sess.searchURL == "" {
		t.Error("session has no search URL")
	}
	if m.staleness != DefaultStaleness {
		t.Errorf("staleness = %v, want %v", m.staleness, DefaultStaleness)
	}
}
