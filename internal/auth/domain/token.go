package domain

import "time"

// TokenKind distinguishes the two claim-set kinds a principal holds.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

func (k TokenKind) String() string { return string(k) }

// TokenPair is what the login and refresh endpoints return: a short-lived
// access token and a long-lived refresh token minted together. The server
// keeps no session object; the pairing lives entirely with the caller.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"` // always "bearer"
	ExpiresIn    time.Duration `json:"expires_in"` // access token lifetime
}

// RevokedToken records a rotated-out refresh token id. Rows are only
// needed until the underlying token would have expired anyway, after
// which housekeeping removes them.
type RevokedToken struct {
	JTI       string
	Domain    Domain
	ExpiresAt time.Time
	RevokedAt time.Time
}
