package portal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/metrics"
)

// DefaultStaleness is how long a session is reused before it is rebuilt
const DefaultStaleness = 15 * time.Minute

// Authenticator builds portal sessions
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*Session, error)
}

// SessionManager hands out a shared session, rebuilding it when it is
// absent or stale. It is safe for concurrent use.
type SessionManager struct {
	auth      Authenticator
	creds     Credentials
	staleness time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time

	mu        sync.Mutex
	session   *Session
	refreshed time.Time
}

// NewSessionManager creates a manager that logs in with creds through auth
func NewSessionManager(auth Authenticator, creds Credentials, staleness time.Duration, m *metrics.Metrics) *SessionManager {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &SessionManager{
		auth:      auth,
		creds:     creds,
		staleness: staleness,
		metrics:   m,
		now:       time.Now,
	}
}

// Get returns the current session, logging in first if there is none or it
// is older than the staleness threshold. Callers arriving during a rebuild
// wait for it and share the result.
func (m *SessionManager) Get(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.session != nil && now.Sub(m.refreshed) <= m.staleness {
		return m.session, nil
	}

	reason := "absent"
	if m.session != nil {
		reason = "stale"
	}

	sess, err := m.auth.Login(ctx, m.creds)
	if err != nil {
		m.session = nil
		return nil, fmt.Errorf("building portal session: %w", err)
	}

	m.session = sess
	m.refreshed = now
	m.metrics.RecordSessionRebuild()

	logger.Info("Portal session built", logger.Fields{
		"reason":  reason,
		"took_ms": m.now().Sub(now).Milliseconds(),
	})
	return sess, nil
}

// Invalidate drops stale so the next Get logs in again. It does nothing
// when another caller already replaced stale with a newer session.
func (m *SessionManager) Invalidate(stale *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stale == nil || m.session != stale {
		return
	}
	m.session = nil
}
