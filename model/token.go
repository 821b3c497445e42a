package model

// TokenPair is the access/refresh pair returned by login, register and
// refresh. Only the refresh token is persisted server-side.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
