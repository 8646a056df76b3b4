package service

import (
	"context"
	"testing"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTestTokenService(t, st)
	svc := NewAuthService(tokens, st)

	alice := seedPrincipal(t, st, domain.DomainUser, "alice", "correct horse", false)
	require.Nil(t, alice.LastLogin)

	t.Run("valid credentials yield a fresh pair", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, domain.DomainUser, "alice", "correct horse")
		require.NoError(t, err)

		claims, err := tokens.Verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)
		require.True(t, claims.Fresh)
	})

	t.Run("last login is stamped", func(t *testing.T) {
		stamped, err := st.Principals(domain.DomainUser).GetByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, stamped.LastLogin)
	})

	t.Run("wrong password and unknown login name are indistinguishable", func(t *testing.T) {
		_, errWrongPass := svc.Authenticate(ctx, domain.DomainUser, "alice", "wrong")
		_, errNoSuchUser := svc.Authenticate(ctx, domain.DomainUser, "nobody", "wrong")

		require.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
		require.ErrorIs(t, errNoSuchUser, ErrInvalidCredentials)
		require.Equal(t, errWrongPass.Error(), errNoSuchUser.Error())
	})

	t.Run("credentials never cross domains", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, domain.DomainAdmin, "alice", "correct horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticateDeactivatedPrincipal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTestTokenService(t, st)
	svc := NewAuthService(tokens, st)

	dora := seedPrincipal(t, st, domain.DomainUser, "dora", "pw-dora-1", false)
	require.NoError(t, st.Principals(domain.DomainUser).SetActive(ctx, dora.ID, false))

	// Login still succeeds; the activation gate lives in token validation,
	// so the minted tokens are unusable.
	pair, err := svc.Authenticate(ctx, domain.DomainUser, "dora", "pw-dora-1")
	require.NoError(t, err)

	_, _, err = tokens.Validate(ctx, pair.AccessToken, domain.TokenKindAccess, domain.DomainUser)
	require.ErrorIs(t, err, ErrInactivePrincipal)

	_, err = tokens.Refresh(ctx, pair.RefreshToken, domain.DomainUser)
	require.ErrorIs(t, err, ErrInactivePrincipal)
}

// TestSessionLifecycle walks one session end to end: password login,
// authenticated validation, access expiry, refresh, and the rotated-out
// token being dead.
func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTestTokenService(t, st)
	svc := NewAuthService(tokens, st)

	seedPrincipal(t, st, domain.DomainUser, "alice", "correct horse", false)

	pair, err := svc.Authenticate(ctx, domain.DomainUser, "alice", "correct horse")
	require.NoError(t, err)

	p, claims, err := tokens.Validate(ctx, pair.AccessToken, domain.TokenKindAccess, domain.DomainUser)
	require.NoError(t, err)
	require.Equal(t, "alice", p.LoginName)
	require.True(t, claims.Fresh)

	// Jump past the access TTL; the refresh token outlives it. Issuance
	// moves with the same clock so the post-refresh pair stays valid.
	later := func() time.Time { return time.Now().Add(2 * time.Minute) }
	tokens.Verifier.SetClock(later)
	tokens.now = later

	_, _, err = tokens.Validate(ctx, pair.AccessToken, domain.TokenKindAccess, domain.DomainUser)
	require.ErrorIs(t, err, tokenx.ErrExpired)

	rotated, err := tokens.Refresh(ctx, pair.RefreshToken, domain.DomainUser)
	require.NoError(t, err)

	_, claims, err = tokens.Validate(ctx, rotated.AccessToken, domain.TokenKindAccess, domain.DomainUser)
	require.NoError(t, err)
	require.False(t, claims.Fresh)

	_, err = tokens.Refresh(ctx, pair.RefreshToken, domain.DomainUser)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAdminCredentialsStaySiloed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTestTokenService(t, st)
	svc := NewAuthService(tokens, st)

	// Same login name in both silos, different passwords.
	seedPrincipal(t, st, domain.DomainUser, "sam", "user-password", false)
	seedPrincipal(t, st, domain.DomainAdmin, "sam", "admin-password", true)

	pair, err := svc.Authenticate(ctx, domain.DomainAdmin, "sam", "admin-password")
	require.NoError(t, err)

	claims, err := tokens.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Dom)

	_, err = svc.Authenticate(ctx, domain.DomainUser, "sam", "admin-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = tokens.Validate(ctx, pair.AccessToken, domain.TokenKindAccess, domain.DomainUser)
	require.ErrorIs(t, err, ErrWrongDomain)
}
