package client

import (
	"context"
	"errors"
	"time"
)

// RefreshResult is the outcome of one refresh evaluation. The three-way
// split between performed, transient failure and authentication failure is
// the contract callers rely on; the two no-op cases are explicit rather
// than folded into a boolean.
type RefreshResult int

const (
	RefreshPerformed RefreshResult = iota
	RefreshNotNeeded
	RefreshSkippedNoToken
	RefreshTransientError
	RefreshAuthError
)

func (r RefreshResult) String() string {
	switch r {
	case RefreshPerformed:
		return "performed"
	case RefreshNotNeeded:
		return "not_needed"
	case RefreshSkippedNoToken:
		return "skipped_no_token"
	case RefreshTransientError:
		return "transient_error"
	case RefreshAuthError:
		return "auth_error"
	default:
		return "unknown"
	}
}

// Scheduler renews the access token before it expires so users never see an
// interruption: a periodic timer re-evaluates the refresh window, and hosts
// call Poke when the process returns to the foreground (the listener that
// covers a laptop sleeping past the refresh window).
type Scheduler struct {
	client          *Client
	refreshInterval time.Duration
	checkInterval   time.Duration
	poke            chan struct{}
}

// NewScheduler builds a scheduler. accessTTL, when known, guards against a
// refresh interval too long to guarantee a proactive renewal before the
// access token expires; pass zero to skip the check.
func NewScheduler(c *Client, refreshInterval, checkInterval, accessTTL time.Duration) (*Scheduler, error) {
	if refreshInterval <= 0 || checkInterval <= 0 {
		return nil, errors.New("scheduler intervals must be positive")
	}
	if accessTTL > 0 && refreshInterval >= accessTTL {
		return nil, errors.New("refresh interval must be shorter than the access token TTL")
	}
	return &Scheduler{
		client:          c,
		refreshInterval: refreshInterval,
		checkInterval:   checkInterval,
		poke:            make(chan struct{}, 1),
	}, nil
}

// PerformProactiveRefresh renews the pair if a renewal is due. It is a no-op
// when there is no refresh token, or when an access token exists and the
// last refresh is still recent.
func (s *Scheduler) PerformProactiveRefresh(ctx context.Context) RefreshResult {
	if s.client.store.RefreshToken() == "" {
		s.client.log.Debug("No refresh token available for proactive refresh")
		return RefreshSkippedNoToken
	}

	if s.client.store.AccessToken() != "" && !s.client.session.IsRefreshNeeded(s.refreshInterval) {
		s.client.log.Debug("Proactive refresh not needed")
		return RefreshNotNeeded
	}

	result, err := s.client.refresh(ctx)
	switch result {
	case RefreshPerformed:
		s.client.log.Info("Proactive token refresh successful")
		s.client.session.SetAuthCheckStatus(AuthCheckSuccess)
	case RefreshAuthError:
		s.client.log.WithError(err).Warn("Proactive token refresh rejected")
	default:
		s.client.log.WithError(err).Warn("Proactive token refresh failed")
	}
	return result
}

// Poke requests an immediate re-evaluation, typically on a resume or
// visibility event. Never blocks.
func (s *Scheduler) Poke() {
	select {
	case s.poke <- struct{}{}:
	default:
	}
}

// Run performs an initial check and then re-evaluates on every tick and on
// every Poke until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.PerformProactiveRefresh(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PerformProactiveRefresh(ctx)
		case <-s.poke:
			s.PerformProactiveRefresh(ctx)
		}
	}
}
