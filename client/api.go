package client

import (
	"context"
	"fmt"
	"mercury-api/model"
	"net/http"
)

// Typed wrappers over Do for the auth-adjacent endpoints.

// Register creates an account and starts a session with the returned pair.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var resp model.AuthResponse
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return c.adoptSession(&resp)
}

// Login authenticates and starts a session with the returned pair.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	body := model.LoginRequest{Email: email, Password: password}
	var resp model.AuthResponse
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: body}, &resp)
	if err != nil {
		return nil, err
	}
	return c.adoptSession(&resp)
}

func (c *Client) adoptSession(resp *model.AuthResponse) (*model.User, error) {
	if resp.Data == nil || resp.Data.Tokens == nil {
		return nil, &APIError{Kind: KindHTTP, Message: "malformed auth response"}
	}
	c.store.SetTokens(resp.Data.Tokens.AccessToken, resp.Data.Tokens.RefreshToken)
	c.session.RecordRefresh()
	c.session.SetAuthCheckStatus(AuthCheckSuccess)
	c.session.SetCachedUser(resp.Data.User)
	return resp.Data.User, nil
}

// Logout revokes the session server-side and clears local state. Local
// state is cleared even when the server call fails: the user asked to be
// signed out.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
	c.store.Clear()
	c.session.Reset()
	return err
}

// Me fetches the caller's profile and refreshes the cached snapshot.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp model.UserResponse
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users/me"}, &resp); err != nil {
		return nil, err
	}
	c.session.SetCachedUser(resp.Data)
	return resp.Data, nil
}

// CheckAuth verifies the stored session against the server and updates the
// auth check status. The cached user (if any) lets the host render
// immediately while this round-trip is in flight.
func (c *Client) CheckAuth(ctx context.Context) (*model.User, error) {
	if c.store.AccessToken() == "" && c.store.RefreshToken() == "" {
		c.session.SetAuthCheckStatus(AuthCheckFailed)
		return nil, &APIError{Kind: KindAuth, Message: "no stored session"}
	}

	user, err := c.Me(ctx)
	if err != nil {
		if IsAuthError(err) {
			c.session.SetAuthCheckStatus(AuthCheckFailed)
		}
		return nil, err
	}

	c.session.SetAuthCheckStatus(AuthCheckSuccess)
	return user, nil
}

// Bookmark toggles a bookmark on. Bookmarks are soft: an expired session
// surfaces an error to the caller instead of forcing a global logout.
func (c *Client) Bookmark(ctx context.Context, postID string) error {
	path := fmt.Sprintf("/posts/%s/bookmark", postID)
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Soft: true}, nil)
}

// Unbookmark toggles a bookmark off. Soft, like Bookmark.
func (c *Client) Unbookmark(ctx context.Context, postID string) error {
	path := fmt.Sprintf("/posts/%s/unbookmark", postID)
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Soft: true}, nil)
}
