package handler

import (
	"mercury-api/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// okHandler records whether a user was attached when the chain reached it.
func okHandler(sawUser *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, attached := UserFromContext(r.Context())
		*sawUser = attached
		w.WriteHeader(http.StatusOK)
	})
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	stack := newTestStack(time.Hour, 2*time.Hour)

	user, pair := seedUser(t, stack)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"too many parts", "Bearer a b", http.StatusUnauthorized},
		{"literal null", "Bearer null", http.StatusUnauthorized},
		{"literal undefined", "Bearer undefined", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"valid token", "Bearer " + pair.AccessToken, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sawUser bool
			rr := httptest.NewRecorder()
			stack.authMW.RequireAuth(okHandler(&sawUser)).ServeHTTP(rr, bearerRequest(tc.header))

			assert.Equal(t, tc.want, rr.Code)
			assert.Equal(t, tc.want == http.StatusOK, sawUser)
		})
	}

	t.Run("refresh token is not an access token", func(t *testing.T) {
		var sawUser bool
		rr := httptest.NewRecorder()
		stack.authMW.RequireAuth(okHandler(&sawUser)).ServeHTTP(rr, bearerRequest("Bearer "+pair.RefreshToken))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token for a deleted account", func(t *testing.T) {
		stack.repo.delete(user.ID)

		var sawUser bool
		rr := httptest.NewRecorder()
		stack.authMW.RequireAuth(okHandler(&sawUser)).ServeHTTP(rr, bearerRequest("Bearer "+pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, sawUser)
	})
}

func TestOptionalAuth(t *testing.T) {
	stack := newTestStack(time.Hour, 2*time.Hour)
	_, pair := seedUser(t, stack)

	// Every failure edge proceeds without a user; only a fully valid token
	// attaches one. No case may produce a non-2xx.
	cases := []struct {
		name     string
		header   string
		wantUser bool
	}{
		{"no header", "", false},
		{"not bearer", "Basic abc", false},
		{"literal null", "Bearer null", false},
		{"literal undefined", "Bearer undefined", false},
		{"garbage token", "Bearer garbage", false},
		{"valid token", "Bearer " + pair.AccessToken, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sawUser bool
			rr := httptest.NewRecorder()
			stack.authMW.OptionalAuth(okHandler(&sawUser)).ServeHTTP(rr, bearerRequest(tc.header))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.wantUser, sawUser)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	stack := newTestStack(time.Hour, 2*time.Hour)
	user, pair := seedUser(t, stack)

	chain := func() (http.Handler, *bool) {
		var sawUser bool
		return stack.authMW.RequireAuth(stack.authMW.RequireAdmin(okHandler(&sawUser))), &sawUser
	}

	t.Run("non-admin is forbidden", func(t *testing.T) {
		h, _ := chain()
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, bearerRequest("Bearer "+pair.AccessToken))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		stack.repo.mu.Lock()
		stack.repo.users[user.ID].IsAdmin = true
		stack.repo.mu.Unlock()

		h, _ := chain()
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, bearerRequest("Bearer "+pair.AccessToken))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	// A token whose expiry instant has passed must be rejected.
	stack := newTestStack(-time.Second, time.Hour)
	_, pair := seedUser(t, stack)

	var sawUser bool
	rr := httptest.NewRecorder()
	stack.authMW.RequireAuth(okHandler(&sawUser)).ServeHTTP(rr, bearerRequest("Bearer "+pair.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func seedUser(t *testing.T, stack *testStack) (*model.User, *model.TokenPair) {
	t.Helper()
	user, pair, err := stack.auth.Register(&model.RegisterRequest{
		Name: "A", Email: "a@x.com", Username: "a", Password: "secret1",
	})
	require.NoError(t, err)
	return user, pair
}
