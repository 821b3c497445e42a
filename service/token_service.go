package service

import (
	"fmt"
	"mercury-api/logger"
	"mercury-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the platform's work factor.
const bcryptCost = 10

// TokenService issues and verifies the access/refresh token pair. The two
// token kinds are signed with independent secrets, so leaking one signing
// key does not allow forging the other kind.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash returns false for any mismatch, including malformed
// hash strings. It never returns an error.
func (s *TokenService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateTokenPair mints a new access/refresh pair for the user. Both
// tokens carry only the account id as a claim.
func (s *TokenService) GenerateTokenPair(userID int) (*model.TokenPair, error) {
	accessToken, err := s.sign(userID, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(userID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *TokenService) sign(userID int, secret []byte, ttl time.Duration) (string, error) {
	claims := &model.AppClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccessToken returns the decoded claims, or nil on any verification
// failure (bad signature, expired, malformed). Callers branch on presence,
// not on error values.
func (s *TokenService) VerifyAccessToken(tokenString string) *model.AppClaims {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefreshToken is VerifyAccessToken against the refresh secret.
func (s *TokenService) VerifyRefreshToken(tokenString string) *model.AppClaims {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *TokenService) verify(tokenString string, secret []byte) *model.AppClaims {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		logger.Log.WithError(err).Debug("Token verification failed")
		return nil
	}

	return claims
}
