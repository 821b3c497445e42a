package client

import (
	"mercury-api/config"

	"github.com/sirupsen/logrus"
)

// NewFromConfig builds a client and its refresh scheduler from the loaded
// application config (the client: and jwt: sections). The access TTL feeds
// the scheduler's refresh-interval guard. Arguments follow the same nil
// defaults as New.
func NewFromConfig(store TokenStore, session *SessionState, events AuthEvents, log *logrus.Logger) (*Client, *Scheduler, error) {
	cfg := config.AppConfig.Client

	c := New(cfg.BaseURL, store, session, events, log)
	s, err := NewScheduler(c, cfg.RefreshInterval, cfg.CheckInterval, config.AppConfig.JWT.AccessTTL)
	if err != nil {
		return nil, nil, err
	}
	return c, s, nil
}
