package model

// AuthData is the payload of successful register/login responses.
type AuthData struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// AuthResponse is the envelope for register/login.
type AuthResponse struct {
	Success bool      `json:"success"`
	Data    *AuthData `json:"data"`
}

// RefreshResponse is the envelope for the refresh endpoint. The field layout
// is flat, unlike login/register, and clients depend on it.
type RefreshResponse struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// MessageResponse is the envelope for logout and other message-only replies.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserResponse is the envelope for profile endpoints.
type UserResponse struct {
	Success bool  `json:"success"`
	Data    *User `json:"data"`
}
