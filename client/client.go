package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mercury-api/model"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 10 * time.Second
	refreshTimeout = 5 * time.Second
)

// AuthEvents is the observer the client publishes hard authentication
// failures to. The host application typically reacts by navigating to the
// login screen. The default implementation does nothing.
type AuthEvents interface {
	SessionExpired(reason string)
}

type noopEvents struct{}

func (noopEvents) SessionExpired(string) {}

// Request describes one API call. Soft marks low-stakes background actions
// (bookmark toggles): an authentication failure on a soft request is
// reported to the caller without tearing down the whole session.
type Request struct {
	Method string
	Path   string
	Body   interface{}
	Soft   bool
}

// Client is an HTTP client for the Mercury API that makes token handling
// transparent: it attaches the bearer header on the way out, reactively
// refreshes-and-retries once on a 401, and keeps transient failures
// strictly separate from authentication failures.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	refreshClient *http.Client
	store         TokenStore
	session       *SessionState
	events        AuthEvents
	log           *logrus.Logger

	// refreshMu serializes refresh attempts so the scheduler and a reactive
	// retry cannot race a double rotation against the server.
	refreshMu sync.Mutex
}

func New(baseURL string, store TokenStore, session *SessionState, events AuthEvents, log *logrus.Logger) *Client {
	if session == nil {
		session = NewSessionState()
	}
	if events == nil {
		events = noopEvents{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		refreshClient: &http.Client{Timeout: refreshTimeout},
		store:         store,
		session:       session,
		events:        events,
		log:           log,
	}
}

// Session exposes the session bookkeeping shared with the scheduler.
func (c *Client) Session() *SessionState {
	return c.session
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Refresh forces a refresh-token exchange now, regardless of the proactive
// window. Most callers want the scheduler instead.
func (c *Client) Refresh(ctx context.Context) (RefreshResult, error) {
	return c.refresh(ctx)
}

// Do executes the request, decoding a 2xx response body into out (which may
// be nil). Errors are always *APIError values classified by kind.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return &APIError{Kind: KindHTTP, Message: "failed to encode request body", Err: err}
		}
	}

	status, body, err := c.send(ctx, req.Method, req.Path, payload, c.store.AccessToken())
	if err != nil {
		return err
	}

	// Reactive refresh: exactly one retry per call, tracked here rather
	// than by mutating any shared request state.
	if status == http.StatusUnauthorized {
		c.log.WithField("path", req.Path).Info("Received 401, attempting reactive token refresh")

		result, refreshErr := c.refresh(ctx)
		switch result {
		case RefreshPerformed:
			status, body, err = c.send(ctx, req.Method, req.Path, payload, c.store.AccessToken())
			if err != nil {
				return err
			}
		case RefreshAuthError:
			if req.Soft {
				// Low-stakes action: surface the failure, keep the session
				// teardown decision with the foreground flow.
				c.log.WithField("path", req.Path).Warn("Auth failure on soft request, not broadcasting logout")
				return &APIError{Kind: KindAuth, StatusCode: status, Message: "Please log in again", Err: refreshErr}
			}
			c.events.SessionExpired("Authentication failed. Please sign in again.")
			return &APIError{Kind: KindAuth, StatusCode: status, Message: "Authentication failed. Please sign in again.", Err: refreshErr}
		default:
			// Transient refresh failure or no refresh token: report without
			// touching stored credentials.
			return c.errorFromStatus(req.Path, status, body)
		}
	}

	if status >= 200 && status < 300 {
		if out != nil && len(body) > 0 {
			if err := json.Unmarshal(body, out); err != nil {
				return &APIError{Kind: KindHTTP, StatusCode: status, Message: "failed to decode response body", Err: err}
			}
		}
		return nil
	}

	return c.errorFromStatus(req.Path, status, body)
}

// send performs a single HTTP exchange. A missing reply (transport error,
// timeout) is a network error; tokens are never touched here.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, accessToken string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, &APIError{Kind: KindHTTP, Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.WithError(err).Error("Network error")
		return 0, nil, &APIError{Kind: KindNetwork, Message: "Network error. Please check your connection and try again.", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &APIError{Kind: KindNetwork, Message: "Network error. Please check your connection and try again.", Err: err}
	}

	return resp.StatusCode, body, nil
}

func (c *Client) errorFromStatus(path string, status int, body []byte) *APIError {
	message := serverMessage(body)
	if message == "" {
		message = http.StatusText(status)
	}

	log := c.log.WithFields(logrus.Fields{"path": path, "status": status})
	switch status {
	case http.StatusForbidden:
		log.Warn("Permission denied")
	case http.StatusTooManyRequests:
		log.Warn("Rate limited. Too many requests.")
	case http.StatusServiceUnavailable:
		log.Warn("Service unavailable. The server might be down or overloaded.")
	default:
		log.Warn("Request failed")
	}

	kind := KindHTTP
	if status >= 500 {
		kind = KindNetwork
	}
	return &APIError{Kind: kind, StatusCode: status, Message: message}
}

func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}

// refresh exchanges the stored refresh token for a new pair. Attempts are
// serialized; a caller that waited on the mutex while another refresh
// rotated the pair must re-read the store instead of replaying its own
// exchange, otherwise the server's equality check would revoke the fresh
// session.
func (c *Client) refresh(ctx context.Context) (RefreshResult, error) {
	observed := c.store.RefreshToken()
	if observed == "" {
		return RefreshSkippedNoToken, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.store.RefreshToken()
	if current == "" {
		return RefreshSkippedNoToken, nil
	}
	if current != observed {
		// Another goroutine already rotated the pair while we waited.
		return RefreshPerformed, nil
	}

	payload, _ := json.Marshal(&model.RefreshRequest{RefreshToken: current})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return RefreshTransientError, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.refreshClient.Do(httpReq)
	if err != nil {
		c.log.WithError(err).Warn("Token refresh failed with a network error, keeping tokens")
		return RefreshTransientError, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RefreshTransientError, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Only a genuine rejection clears credentials.
		c.log.WithField("status", resp.StatusCode).Info("Authentication error during token refresh, clearing tokens")
		c.store.Clear()
		c.session.SetAuthCheckStatus(AuthCheckFailed)
		return RefreshAuthError, fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.log.WithField("status", resp.StatusCode).Warn("Non-authentication error during token refresh, keeping tokens")
		return RefreshTransientError, fmt.Errorf("refresh failed with status %d", resp.StatusCode)
	}

	var refreshed model.RefreshResponse
	if err := json.Unmarshal(body, &refreshed); err != nil || refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		c.log.Warn("Invalid refresh token response, keeping tokens")
		return RefreshTransientError, fmt.Errorf("invalid refresh token response")
	}

	c.store.SetTokens(refreshed.AccessToken, refreshed.RefreshToken)
	c.session.RecordRefresh()
	return RefreshPerformed, nil
}
