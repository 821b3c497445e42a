package service

import (
	"database/sql"
	"errors"
	"mercury-api/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) ExistsByEmailOrUsername(email, username string) (bool, error) {
	args := m.Called(email, username)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserRepo) UpdateRefreshToken(userID int, refreshToken string) error {
	args := m.Called(userID, refreshToken)
	return args.Error(0)
}

func newTestAuthService(repo *mockUserRepo) (*AuthService, *TokenService) {
	tokens := newTestTokenService(time.Hour, 2*time.Hour)
	return NewAuthService(repo, tokens, NewUserService(repo, nil)), tokens
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("ExistsByEmailOrUsername", "a@x.com", "a").Return(false, nil).Once()
		mockRepo.On("CreateUser", mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
			args.Get(0).(*model.User).ID = 1
		}).Return(nil).Once()
		mockRepo.On("UpdateRefreshToken", 1, mock.AnythingOfType("string")).Return(nil).Once()

		authService, tokens := newTestAuthService(mockRepo)
		user, pair, err := authService.Register(&model.RegisterRequest{
			Name: "A", Email: "a@x.com", Username: "a", Password: "secret1",
		})

		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
		assert.False(t, user.IsAdmin)
		assert.True(t, tokens.CheckPasswordHash("secret1", user.PasswordHash))

		claims := tokens.VerifyAccessToken(pair.AccessToken)
		require.NotNil(t, claims)
		assert.Equal(t, user.ID, claims.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email or username", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("ExistsByEmailOrUsername", "a@x.com", "b").Return(true, nil).Once()

		authService, _ := newTestAuthService(mockRepo)
		_, _, err := authService.Register(&model.RegisterRequest{
			Name: "A", Email: "a@x.com", Username: "b", Password: "secret1",
		})

		assert.ErrorIs(t, err, ErrUserExists)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success returns pair for the same account", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, tokens := newTestAuthService(mockRepo)

		hash, err := tokens.HashPassword("secret1")
		require.NoError(t, err)
		stored := &model.User{ID: 5, Email: "a@x.com", PasswordHash: hash}

		mockRepo.On("GetUserByEmail", "a@x.com").Return(stored, nil).Once()
		mockRepo.On("UpdateRefreshToken", 5, mock.AnythingOfType("string")).Return(nil).Once()

		user, pair, err := authService.Login("a@x.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, 5, user.ID)

		claims := tokens.VerifyRefreshToken(pair.RefreshToken)
		require.NotNil(t, claims)
		assert.Equal(t, 5, claims.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", "nobody@x.com").Return(nil, sql.ErrNoRows).Once()

		authService, _ := newTestAuthService(mockRepo)
		_, _, err := authService.Login("nobody@x.com", "secret1")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, tokens := newTestAuthService(mockRepo)

		hash, err := tokens.HashPassword("secret1")
		require.NoError(t, err)
		mockRepo.On("GetUserByEmail", "a@x.com").Return(&model.User{ID: 5, PasswordHash: hash}, nil).Once()

		_, _, err = authService.Login("a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "UpdateRefreshToken")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("rotates the stored token", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, tokens := newTestAuthService(mockRepo)

		old, err := tokens.GenerateTokenPair(5)
		require.NoError(t, err)
		stored := &model.User{ID: 5, RefreshToken: old.RefreshToken}

		mockRepo.On("GetUserByID", 5).Return(stored, nil).Once()
		var rotated string
		mockRepo.On("UpdateRefreshToken", 5, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
			rotated = args.String(1)
		}).Return(nil).Once()

		pair, err := authService.Refresh(old.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, rotated)
		assert.NotEqual(t, old.RefreshToken, pair.RefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("superseded token fails", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, tokens := newTestAuthService(mockRepo)

		old, err := tokens.GenerateTokenPair(5)
		require.NoError(t, err)
		// The account has since rotated to a different token.
		mockRepo.On("GetUserByID", 5).Return(&model.User{ID: 5, RefreshToken: "another-token"}, nil).Once()

		_, err = authService.Refresh(old.RefreshToken)
		assert.ErrorIs(t, err, ErrRefreshTokenMismatch)
		mockRepo.AssertNotCalled(t, "UpdateRefreshToken")
	})

	t.Run("post-logout token fails even if unexpired", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, tokens := newTestAuthService(mockRepo)

		old, err := tokens.GenerateTokenPair(5)
		require.NoError(t, err)
		mockRepo.On("GetUserByID", 5).Return(&model.User{ID: 5, RefreshToken: ""}, nil).Once()

		_, err = authService.Refresh(old.RefreshToken)
		assert.ErrorIs(t, err, ErrRefreshTokenMismatch)
	})

	t.Run("cryptographically invalid token fails", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, _ := newTestAuthService(mockRepo)

		_, err := authService.Refresh("garbage")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		mockRepo.AssertNotCalled(t, "GetUserByID")
	})

	t.Run("unknown account fails", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, tokens := newTestAuthService(mockRepo)

		old, err := tokens.GenerateTokenPair(99)
		require.NoError(t, err)
		mockRepo.On("GetUserByID", 99).Return(nil, sql.ErrNoRows).Once()

		_, err = authService.Refresh(old.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("clears the stored token", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("UpdateRefreshToken", 5, "").Return(nil).Once()

		authService, _ := newTestAuthService(mockRepo)
		assert.NoError(t, authService.Logout(5))
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		expected := errors.New("database error")
		mockRepo.On("UpdateRefreshToken", 5, "").Return(expected).Once()

		authService, _ := newTestAuthService(mockRepo)
		assert.ErrorIs(t, authService.Logout(5), expected)
	})
}
