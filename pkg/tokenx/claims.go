// Package tokenx implements the signed claim-set codec used for bearer
// tokens. It only cares about cryptographic integrity and time bounds;
// kind/domain/freshness business checks belong to the token service.
package tokenx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "kind" claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Default token TTLs. Access tokens are deliberately short-lived, refresh
// tokens long-lived; both can be overridden through service configuration.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the signed, immutable payload of every token. Subject is the
// principal's login name; Dom scopes the token to one principal domain.
type Claims struct {
	jwt.RegisteredClaims

	// Kind is "access" or "refresh".
	Kind string `json:"kind"`

	// Dom is the principal domain the token is scoped to ("user", "admin").
	Dom string `json:"dom"`

	// Fresh marks an access token minted directly from a password login.
	// Refresh-derived access tokens always carry fresh=false.
	Fresh bool `json:"fresh,omitempty"`
}

// NewClaims builds a time-bounded claim-set. Every token gets a jti so
// refresh tokens can be denylisted on rotation.
func NewClaims(subject, kind, dom string, fresh bool, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Kind:  kind,
		Dom:   dom,
		Fresh: fresh,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf), allowing the given leeway for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
