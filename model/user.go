package model

import "time"

// User is the account record. PasswordHash and RefreshToken never leave the
// server; RefreshToken holds the single currently-trusted refresh token for
// the account (empty string means no active session).
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicProfile strips fields that are only shown to the account owner
// (or an admin). Used by the optional-auth profile endpoint.
func (u *User) PublicProfile() *User {
	p := *u
	p.Email = ""
	return &p
}
