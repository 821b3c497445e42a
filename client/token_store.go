package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore persists the access/refresh pair. It is a pure value store
// with no expiry awareness; clearing happens on logout or on a hard
// authentication failure, never on connectivity problems.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string)
	Clear()
}

type tokenPairFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FileTokenStore keeps the pair in a mode-0600 JSON file so sessions
// survive process restarts.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore stores tokens at the given path. An empty path defaults
// to .mercury-tokens.json in the user's home directory.
func NewFileTokenStore(path string) *FileTokenStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".mercury-tokens.json")
	}
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) load() tokenPairFile {
	var pair tokenPairFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		return pair
	}
	// A corrupt file reads as no session.
	_ = json.Unmarshal(data, &pair)
	return pair
}

func (s *FileTokenStore) save(pair tokenPairFile) {
	data, err := json.Marshal(pair)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0600)
}

func (s *FileTokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().AccessToken
}

func (s *FileTokenStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().RefreshToken
}

func (s *FileTokenStore) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(tokenPairFile{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.path)
}

// MemoryTokenStore is an in-process TokenStore for tests and embedding hosts
// that manage persistence themselves.
type MemoryTokenStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *MemoryTokenStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = accessToken
	s.refresh = refreshToken
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}
