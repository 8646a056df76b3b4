package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/slogx"
	"github.com/habitloop/habitloop/pkg/tokenx"
)

// TokenService mints and validates the access/refresh claim-set pairs.
// It is safe for concurrent use: the signer key is read-only after
// construction and the only shared state is the store.
type TokenService struct {
	Signer     *tokenx.Signer
	Verifier   *tokenx.Verifier
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	now func() time.Time
}

// NewTokenService validates the token configuration up front; a broken
// configuration must abort process start, not first request.
func NewTokenService(
	signer *tokenx.Signer,
	verifier *tokenx.Verifier,
	st store.Store,
	accessTTL, refreshTTL time.Duration,
) (*TokenService, error) {
	if signer == nil || verifier == nil {
		return nil, fmt.Errorf("%w: missing signing key", ErrInvalidConfiguration)
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("%w: access token TTL must be positive", ErrInvalidConfiguration)
	}
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("%w: refresh token TTL must be positive", ErrInvalidConfiguration)
	}

	return &TokenService{
		Signer:     signer,
		Verifier:   verifier,
		Store:      st,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// IssueAccess mints an access token for subject in the given domain.
// fresh is true only on the direct password-login path.
func (s *TokenService) IssueAccess(subject string, d domain.Domain, fresh bool) (string, error) {
	claims := tokenx.NewClaims(subject, tokenx.KindAccess, d.String(), fresh, s.AccessTTL, s.now().UTC())
	return s.Signer.Sign(claims)
}

// IssueRefresh mints a refresh token for subject. The jti inside is what
// rotation later denylists.
func (s *TokenService) IssueRefresh(subject string, d domain.Domain) (string, error) {
	claims := tokenx.NewClaims(subject, tokenx.KindRefresh, d.String(), false, s.RefreshTTL, s.now().UTC())
	return s.Signer.Sign(claims)
}

// IssuePair mints the access+refresh pair handed out at login and on
// refresh rotation.
func (s *TokenService) IssuePair(subject string, d domain.Domain, fresh bool) (domain.TokenPair, error) {
	access, err := s.IssueAccess(subject, d, fresh)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.IssueRefresh(subject, d)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Validate checks a presented token and resolves it to a principal.
// Gates run in a fixed order, each short-circuiting:
//
//  1. decode (signature, structure, expiry)
//  2. kind match
//  3. domain match
//  4. rotation denylist (refresh tokens only)
//  5. principal lookup by subject
//  6. activation flag
//
// Cryptographic and structural checks come before any store read so
// token-shaped attacks are rejected uniformly and cheaply.
func (s *TokenService) Validate(
	ctx context.Context,
	tokenStr string,
	kind domain.TokenKind,
	d domain.Domain,
) (domain.Principal, tokenx.Claims, error) {
	claims, err := s.Verifier.Verify(tokenStr)
	if err != nil {
		return domain.Principal{}, tokenx.Claims{}, err
	}

	if claims.Kind != kind.String() {
		return domain.Principal{}, tokenx.Claims{}, ErrWrongKind
	}
	if claims.Dom != d.String() {
		return domain.Principal{}, tokenx.Claims{}, ErrWrongDomain
	}

	if kind == domain.TokenKindRefresh {
		revoked, err := s.Store.RevokedTokens().IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.Principal{}, tokenx.Claims{}, err
		}
		if revoked {
			return domain.Principal{}, tokenx.Claims{}, ErrTokenRevoked
		}
	}

	principal, err := s.Store.Principals(d).GetByLoginName(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, tokenx.Claims{}, ErrInvalidCredentials
		}
		return domain.Principal{}, tokenx.Claims{}, err
	}

	if !principal.Active {
		return domain.Principal{}, tokenx.Claims{}, ErrInactivePrincipal
	}

	return principal, claims, nil
}

// Refresh rotates a refresh token: the old token's jti is denylisted and
// a brand new pair is issued, in one transaction. Refresh-derived access
// tokens are never fresh. Any validation failure means the session is
// terminated and the caller must log in again.
func (s *TokenService) Refresh(ctx context.Context, refreshStr string, d domain.Domain) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	principal, claims, err := s.Validate(ctx, refreshStr, domain.TokenKindRefresh, d)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.IssuePair(principal.LoginName, d, false)
	if err != nil {
		return domain.TokenPair{}, err
	}

	revoked := domain.RevokedToken{
		JTI:       claims.ID,
		Domain:    d,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.RevokedTokens().Revoke(ctx, revoked)
	})
	if err != nil {
		// A conflicting insert means another caller already rotated this
		// token: treat it as reuse, not success.
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("refresh token reuse detected",
				slog.String("jti", claims.ID),
				slog.String("domain", d.String()),
			)
			return domain.TokenPair{}, ErrTokenRevoked
		}
		return domain.TokenPair{}, err
	}

	return pair, nil
}
