package handler

import (
	"database/sql"
	"mercury-api/model"
	"mercury-api/repository"
	"mercury-api/service"
	"net/http"
	"sync"
	"time"
)

// fakeUserRepo is an in-memory IUserRepository so handler tests can run the
// full register/login/refresh/logout flows without a database.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*model.User
	nextID int
}

var _ repository.IUserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) CreateUser(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) ExistsByEmailOrUsername(email, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateRefreshToken(userID int, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	user.RefreshToken = refreshToken
	return nil
}

func (f *fakeUserRepo) delete(userID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
}

// testStack wires the real services over the fake repository and mirrors
// the router's auth wiring.
type testStack struct {
	repo   *fakeUserRepo
	tokens *service.TokenService
	auth   *service.AuthService
	users  *service.UserService
	authMW *AuthMiddleware
	authH  *AuthHandler
	userH  *UserHandler
}

func newTestStack(accessTTL, refreshTTL time.Duration) *testStack {
	repo := newFakeUserRepo()
	tokens := service.NewTokenService("test-access", "test-refresh", accessTTL, refreshTTL)
	users := service.NewUserService(repo, nil)
	auth := service.NewAuthService(repo, tokens, users)
	return &testStack{
		repo:   repo,
		tokens: tokens,
		auth:   auth,
		users:  users,
		authMW: NewAuthMiddleware(tokens, users),
		authH:  NewAuthHandler(auth),
		userH:  NewUserHandler(users),
	}
}

func (s *testStack) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("POST /auth/register", ErrorHandlingMiddleware(s.authH.Register))
	mux.Handle("POST /auth/login", ErrorHandlingMiddleware(s.authH.Login))
	mux.Handle("POST /auth/refresh", ErrorHandlingMiddleware(s.authH.Refresh))
	mux.Handle("POST /auth/logout", s.authMW.RequireAuth(ErrorHandlingMiddleware(s.authH.Logout)))
	mux.Handle("GET /users/me", s.authMW.RequireAuth(ErrorHandlingMiddleware(s.userH.Me)))
	mux.Handle("GET /users/username/{username}", s.authMW.OptionalAuth(ErrorHandlingMiddleware(s.userH.GetByUsername)))
	return mux
}
