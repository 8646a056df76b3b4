package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/cryptox"
	"github.com/habitloop/habitloop/pkg/slogx"
)

// AuthService handles the credential login path: verify the password,
// stamp last-login, mint a fresh token pair.
type AuthService struct {
	Tokens *TokenService
	Store  store.Store

	now func() time.Time
}

func NewAuthService(tokens *TokenService, st store.Store) *AuthService {
	return &AuthService{Tokens: tokens, Store: st, now: time.Now}
}

// Authenticate verifies the identifier/password pair against the given
// domain and returns a token pair with a fresh access token. Unknown
// identifiers and wrong passwords both return ErrInvalidCredentials,
// nothing more specific.
func (s *AuthService) Authenticate(
	ctx context.Context,
	d domain.Domain,
	identifier, password string,
) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	principal, err := s.Store.Principals(d).GetByLoginName(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, principal.PasswordHash); err != nil {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	// Best effort: a failed stamp shouldn't block the login.
	if err := s.Store.Principals(d).UpdateLastLogin(ctx, principal.ID, s.now().UTC()); err != nil {
		l.Warn("failed to update last login",
			slog.String("principal_id", principal.ID.String()),
			slog.Any("err", err),
		)
	}

	return s.Tokens.IssuePair(principal.LoginName, d, true)
}
