package service

import (
	"database/sql"
	"errors"
	"mercury-api/logger"
	"mercury-api/model"
	"mercury-api/repository"

	"github.com/sirupsen/logrus"
)

// Sentinel errors let handlers map business failures to HTTP status codes.
// The refresh failures are deliberately distinct values so logs can tell a
// cryptographic rejection from a rotation mismatch, even though both reach
// the client as a 401.
var (
	ErrUserExists           = errors.New("user with this email or username already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match the active session")
)

// AuthService implements the register/login/refresh/logout lifecycle.
// Exactly one refresh token per account is trusted at a time: every issue
// overwrites the stored value, so a refresh token is single-use and logout
// revokes the session outright.
type AuthService struct {
	userRepo repository.IUserRepository
	tokens   *TokenService
	users    *UserService
}

func NewAuthService(userRepo repository.IUserRepository, tokens *TokenService, users *UserService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, users: users}
}

// Register creates the account, then issues and persists the first token
// pair so the caller is logged in immediately.
func (s *AuthService) Register(req *model.RegisterRequest) (*model.User, *model.TokenPair, error) {
	exists, err := s.userRepo.ExistsByEmailOrUsername(req.Email, req.Username)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrUserExists
	}

	hash, err := s.tokens.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      false,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueAndStore(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, pair, nil
}

func (s *AuthService) Login(email, password string) (*model.User, *model.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !s.tokens.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueAndStore(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return user, pair, nil
}

// Refresh honors the presented token only if it verifies cryptographically
// AND textually equals the account's stored refresh token. A successful
// refresh rotates the stored value, invalidating the presented token.
func (s *AuthService) Refresh(refreshToken string) (*model.TokenPair, error) {
	claims := s.tokens.VerifyRefreshToken(refreshToken)
	if claims == nil {
		logger.Log.Warn("Refresh rejected: token failed verification")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithField("user_id", claims.UserID).Warn("Refresh rejected: account not found")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if user.RefreshToken != refreshToken {
		logger.Log.WithField("user_id", user.ID).Warn("Refresh rejected: stored token mismatch")
		return nil, ErrRefreshTokenMismatch
	}

	pair, err := s.issueAndStore(user)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("Tokens refreshed")
	return pair, nil
}

// Logout clears the stored refresh token, so any outstanding refresh token
// for the account is rejected even before its expiry.
func (s *AuthService) Logout(userID int) error {
	if err := s.userRepo.UpdateRefreshToken(userID, ""); err != nil {
		return err
	}
	if s.users != nil {
		s.users.InvalidateCache(userID)
	}
	logger.Log.WithField("user_id", userID).Info("User logged out")
	return nil
}

func (s *AuthService) issueAndStore(user *model.User) (*model.TokenPair, error) {
	pair, err := s.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRefreshToken(user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	user.RefreshToken = pair.RefreshToken

	if s.users != nil {
		s.users.InvalidateCache(user.ID)
	}
	return pair, nil
}
