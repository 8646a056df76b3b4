package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("tokenx: malformed token")
	ErrInvalidSig  = errors.New("tokenx: invalid signature")
	ErrExpired     = errors.New("tokenx: token expired")
	ErrNotYetValid = errors.New("tokenx: token not yet valid")
)

// Verifier validates compact token strings against the shared signing key
// and gives back the claims if they're legit.
type Verifier struct {
	key []byte

	// Leeway allows small clock skew when validating exp/nbf. Time sync
	// is never perfect between issuer and validator.
	Leeway time.Duration

	// now is overridable for expiry tests.
	now func() time.Time
}

// NewVerifier builds a verifier for the given key and leeway.
func NewVerifier(key []byte, leeway time.Duration) (*Verifier, error) {
	if len(key) < MinKeyBytes {
		return nil, errors.New("tokenx: signing key must be at least 32 bytes")
	}
	return &Verifier{key: key, Leeway: leeway, now: time.Now}, nil
}

// Verify checks structure and signature, then expiry with leeway. All
// structural failures collapse to a small typed error set so callers can
// map them to a uniform rejection.
func (v *Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked below with our own leeway policy.
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrMalformed
	}
	if claims.Subject == "" || claims.Kind == "" {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateExpiry(v.now().UTC(), v.Leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// SetClock overrides the verifier's clock. Tests only.
func (v *Verifier) SetClock(now func() time.Time) { v.now = now }
