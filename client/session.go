package client

import (
	"mercury-api/model"
	"sync"
	"time"
)

// AuthCheckStatus tracks the startup session verification.
type AuthCheckStatus string

const (
	AuthCheckPending AuthCheckStatus = "pending"
	AuthCheckSuccess AuthCheckStatus = "success"
	AuthCheckFailed  AuthCheckStatus = "failed"
)

// SessionState holds process-scoped session bookkeeping: the last proactive
// refresh time, the auth check status, and an optional cached user snapshot
// for instant restoration before the network round-trip confirms validity.
// Unlike the token store it is deliberately not persisted.
type SessionState struct {
	mu          sync.Mutex
	lastRefresh time.Time
	status      AuthCheckStatus
	cachedUser  *model.User
}

func NewSessionState() *SessionState {
	return &SessionState{status: AuthCheckPending}
}

// RecordRefresh stamps the current time as the last successful refresh.
func (s *SessionState) RecordRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = time.Now()
}

func (s *SessionState) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

// IsRefreshNeeded reports whether a proactive refresh is due: no refresh has
// been recorded yet, or the interval has elapsed since the last one.
func (s *SessionState) IsRefreshNeeded(interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRefresh.IsZero() {
		return true
	}
	return time.Since(s.lastRefresh) > interval
}

func (s *SessionState) SetAuthCheckStatus(status AuthCheckStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *SessionState) AuthCheckStatus() AuthCheckStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetCachedUser stores a profile snapshot for instant-render-then-verify UX.
func (s *SessionState) SetCachedUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedUser = user
}

func (s *SessionState) CachedUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedUser
}

// Reset returns the session to its initial state (logout, hard auth failure).
func (s *SessionState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = time.Time{}
	s.status = AuthCheckPending
	s.cachedUser = nil
}
