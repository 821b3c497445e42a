package handler

import (
	"context"
	"mercury-api/common"
	"mercury-api/model"
	"mercury-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "token"
)

// UserFromContext returns the authenticated user attached by RequireAuth,
// or by OptionalAuth when the request carried a valid token.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey).(*model.User)
	return user, ok
}

// TokenFromContext returns the raw bearer token attached alongside the user.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// AuthMiddleware gates requests on the access token. The required variant
// rejects with 401 at the first failed step; the optional variant collapses
// every failure edge into proceeding without an attached user.
type AuthMiddleware struct {
	tokens *service.TokenService
	users  *service.UserService
}

func NewAuthMiddleware(tokens *service.TokenService, users *service.UserService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// resolve runs the shared extraction/verification pipeline:
// header -> bearer format -> placeholder guard -> signature/expiry -> account.
func (m *AuthMiddleware) resolve(r *http.Request) (*model.User, string, *common.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "", common.NewAuthenticationError("Authorization header is required", nil)
	}

	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return nil, "", common.NewAuthenticationError("Invalid authorization header format", nil)
	}

	tokenString := headerParts[1]
	// Buggy clients serialize an absent token as a literal "null" or
	// "undefined"; treat those as missing, not as token values.
	if tokenString == "" || tokenString == "null" || tokenString == "undefined" {
		return nil, "", common.NewAuthenticationError("Invalid token format", nil)
	}

	claims := m.tokens.VerifyAccessToken(tokenString)
	if claims == nil {
		return nil, "", common.NewAuthenticationError("Invalid or expired token", nil)
	}

	user, err := m.users.GetByID(claims.UserID)
	if err != nil {
		return nil, "", common.NewAuthenticationError("User not found", err)
	}

	return user, tokenString, nil
}

func withIdentity(r *http.Request, user *model.User, token string) *http.Request {
	ctx := context.WithValue(r.Context(), UserKey, user)
	ctx = context.WithValue(ctx, TokenKey, token)
	return r.WithContext(ctx)
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, appErr := m.resolve(r)
		if appErr != nil {
			appErr.Send(w)
			return
		}
		next.ServeHTTP(w, withIdentity(r, user, token))
	})
}

// OptionalAuth personalizes when possible but never blocks: any failure in
// the pipeline simply proceeds with no user attached.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, appErr := m.resolve(r)
		if appErr != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withIdentity(r, user, token))
	})
}

// RequireAdmin must be used after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin {
			appErr := common.NewAuthorizationError("Not authorized as an admin", nil)
			appErr.Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
