package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mercury-api/model"
	"mercury-api/repository"
	"time"
)

const userCacheTTL = 5 * time.Minute

// UserService serves profile lookups, utilizing a cache-aside strategy for
// the per-request identity resolution done by the auth middleware. The
// cached copy never includes the stored refresh token; the refresh flow
// always reads the repository directly.
type UserService struct {
	repo  repository.IUserRepository
	cache ICacheClient
}

// NewUserService creates a UserService. The cache may be nil, in which case
// every lookup goes to the database.
func NewUserService(repo repository.IUserRepository, cache ICacheClient) *UserService {
	return &UserService{repo: repo, cache: cache}
}

func userCacheKey(id int) string {
	return fmt.Sprintf("user:%d", id)
}

// GetByID resolves a user, preferring the cache.
func (s *UserService) GetByID(id int) (*model.User, error) {
	ctx := context.Background()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userCacheKey(id)).Result(); err == nil {
			var user model.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		}
	}

	user, err := s.repo.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Strip session state before caching; the cache only serves
		// identity resolution.
		cacheable := *user
		cacheable.RefreshToken = ""
		if data, err := json.Marshal(&cacheable); err == nil {
			s.cache.Set(ctx, userCacheKey(id), data, userCacheTTL)
		}
	}

	return user, nil
}

// GetByUsername resolves a public profile. Not cached: profile pages are a
// fraction of middleware traffic.
func (s *UserService) GetByUsername(username string) (*model.User, error) {
	return s.repo.GetUserByUsername(username)
}

// InvalidateCache drops the cached profile, used whenever the account
// record changes (token rotation, logout, profile edits).
func (s *UserService) InvalidateCache(id int) {
	if s.cache != nil {
		s.cache.Del(context.Background(), userCacheKey(id))
	}
}
