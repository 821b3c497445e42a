package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims carries only the account id; both access and refresh tokens use
// the same claim set and differ only in signing secret and expiry.
type AppClaims struct {
	UserID int `json:"id"`
	jwt.RegisteredClaims
}
