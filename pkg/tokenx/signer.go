package tokenx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBytes is the smallest signing key we accept. HS256 keys shorter
// than the hash output weaken the MAC.
const MinKeyBytes = 32

// Signer produces compact HS256-signed tokens with a single process-wide
// key. The key is loaded once at startup and never logged.
type Signer struct {
	key []byte
}

// NewSigner wraps the signing key. The key is validated at construction
// so a misconfigured process fails at startup, not at first login.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) < MinKeyBytes {
		return nil, errors.New("tokenx: signing key must be at least 32 bytes")
	}
	return &Signer{key: key}, nil
}

// Sign turns the claims into a signed compact token string.
func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}
