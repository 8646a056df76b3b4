package service

import (
	"context"
	"testing"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

func TestNewTokenServiceRejectsBrokenConfig(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	signer, err := tokenx.NewSigner(testSigningKey)
	require.NoError(t, err)
	verifier, err := tokenx.NewVerifier(testSigningKey, 0)
	require.NoError(t, err)

	t.Run("missing signer", func(t *testing.T) {
		_, err := NewTokenService(nil, verifier, st, time.Minute, time.Hour)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("missing verifier", func(t *testing.T) {
		_, err := NewTokenService(signer, nil, st, time.Minute, time.Hour)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("non-positive access TTL", func(t *testing.T) {
		_, err := NewTokenService(signer, verifier, st, 0, time.Hour)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("non-positive refresh TTL", func(t *testing.T) {
		_, err := NewTokenService(signer, verifier, st, time.Minute, -time.Hour)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestIssuePair(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	pair, err := svc.IssuePair("alice", domain.DomainUser, true)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, time.Minute, pair.ExpiresIn)

	access, err := svc.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", access.Subject)
	require.Equal(t, tokenx.KindAccess, access.Kind)
	require.Equal(t, "user", access.Dom)
	require.True(t, access.Fresh)

	refresh, err := svc.Verifier.Verify(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, tokenx.KindRefresh, refresh.Kind)
	require.False(t, refresh.Fresh)
	require.NotEmpty(t, refresh.ID)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	alice := seedPrincipal(t, st, domain.DomainUser, "alice", "s3cret!", false)

	t.Run("resolves the principal on a good access token", func(t *testing.T) {
		token, err := svc.IssueAccess("alice", domain.DomainUser, true)
		require.NoError(t, err)

		p, claims, err := svc.Validate(ctx, token, domain.TokenKindAccess, domain.DomainUser)
		require.NoError(t, err)
		require.Equal(t, alice.ID, p.ID)
		require.Equal(t, "alice", p.LoginName)
		require.True(t, claims.Fresh)
	})

	t.Run("rejects a refresh token on the access gate", func(t *testing.T) {
		token, err := svc.IssueRefresh("alice", domain.DomainUser)
		require.NoError(t, err)

		_, _, err = svc.Validate(ctx, token, domain.TokenKindAccess, domain.DomainUser)
		require.ErrorIs(t, err, ErrWrongKind)
	})

	t.Run("rejects cross-domain use", func(t *testing.T) {
		token, err := svc.IssueAccess("alice", domain.DomainUser, true)
		require.NoError(t, err)

		_, _, err = svc.Validate(ctx, token, domain.TokenKindAccess, domain.DomainAdmin)
		require.ErrorIs(t, err, ErrWrongDomain)
	})

	t.Run("rejects tokens for unknown subjects", func(t *testing.T) {
		token, err := svc.IssueAccess("ghost", domain.DomainUser, false)
		require.NoError(t, err)

		_, _, err = svc.Validate(ctx, token, domain.TokenKindAccess, domain.DomainUser)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects tampered tokens", func(t *testing.T) {
		token, err := svc.IssueAccess("alice", domain.DomainUser, true)
		require.NoError(t, err)

		_, _, err = svc.Validate(ctx, token+"x", domain.TokenKindAccess, domain.DomainUser)
		require.ErrorIs(t, err, tokenx.ErrInvalidSig)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		token, err := svc.IssueAccess("alice", domain.DomainUser, true)
		require.NoError(t, err)

		svc.Verifier.SetClock(func() time.Time { return time.Now().Add(2 * time.Minute) })
		defer svc.Verifier.SetClock(time.Now)

		_, _, err = svc.Validate(ctx, token, domain.TokenKindAccess, domain.DomainUser)
		require.ErrorIs(t, err, tokenx.ErrExpired)
	})

	t.Run("rejects tokens for deactivated principals", func(t *testing.T) {
		token, err := svc.IssueAccess("alice", domain.DomainUser, true)
		require.NoError(t, err)

		require.NoError(t, st.Principals(domain.DomainUser).SetActive(ctx, alice.ID, false))
		defer func() {
			require.NoError(t, st.Principals(domain.DomainUser).SetActive(ctx, alice.ID, true))
		}()

		_, _, err = svc.Validate(ctx, token, domain.TokenKindAccess, domain.DomainUser)
		require.ErrorIs(t, err, ErrInactivePrincipal)
	})
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	seedPrincipal(t, st, domain.DomainUser, "bob", "s3cret!", false)

	original, err := svc.IssuePair("bob", domain.DomainUser, true)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, original.RefreshToken, domain.DomainUser)
	require.NoError(t, err)
	require.NotEqual(t, original.RefreshToken, rotated.RefreshToken)

	t.Run("rotated access token is never fresh", func(t *testing.T) {
		claims, err := svc.Verifier.Verify(rotated.AccessToken)
		require.NoError(t, err)
		require.Equal(t, tokenx.KindAccess, claims.Kind)
		require.False(t, claims.Fresh)
	})

	t.Run("old refresh token is dead after rotation", func(t *testing.T) {
		_, err := svc.Refresh(ctx, original.RefreshToken, domain.DomainUser)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("new refresh token keeps working", func(t *testing.T) {
		again, err := svc.Refresh(ctx, rotated.RefreshToken, domain.DomainUser)
		require.NoError(t, err)
		require.NotEmpty(t, again.AccessToken)
	})

	t.Run("access tokens are rejected by the refresh flow", func(t *testing.T) {
		_, err := svc.Refresh(ctx, original.AccessToken, domain.DomainUser)
		require.ErrorIs(t, err, ErrWrongKind)
	})

	t.Run("refresh tokens stay siloed per domain", func(t *testing.T) {
		_, err := svc.Refresh(ctx, rotated.RefreshToken, domain.DomainAdmin)
		require.ErrorIs(t, err, ErrWrongDomain)
	})
}

func TestRefreshConcurrentReuse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	seedPrincipal(t, st, domain.DomainUser, "carol", "s3cret!", false)

	token, err := svc.IssueRefresh("carol", domain.DomainUser)
	require.NoError(t, err)

	// Simulate the losing racer: its jti is already denylisted when the
	// revoke insert runs, so rotation reports reuse instead of success.
	claims, err := svc.Verifier.Verify(token)
	require.NoError(t, err)
	require.NoError(t, st.RevokedTokens().Revoke(ctx, domain.RevokedToken{
		JTI:       claims.ID,
		Domain:    domain.DomainUser,
		ExpiresAt: claims.ExpiresAt.Time,
	}))

	_, err = svc.Refresh(ctx, token, domain.DomainUser)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestHousekeepingPurgesExpiredDenylistRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	expired := domain.RevokedToken{JTI: "expired-jti", Domain: domain.DomainUser, ExpiresAt: time.Now().Add(-time.Hour)}
	live := domain.RevokedToken{JTI: "live-jti", Domain: domain.DomainUser, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.RevokedTokens().Revoke(ctx, expired))
	require.NoError(t, st.RevokedTokens().Revoke(ctx, live))

	require.NoError(t, st.RevokedTokens().DeleteExpired(ctx))

	revoked, err := st.RevokedTokens().IsRevoked(ctx, "expired-jti")
	require.NoError(t, err)
	require.False(t, revoked)

	revoked, err = st.RevokedTokens().IsRevoked(ctx, "live-jti")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRevokeSameJTITwiceConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	rt := domain.RevokedToken{JTI: "dup-jti", Domain: domain.DomainUser, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.RevokedTokens().Revoke(ctx, rt))
	require.ErrorIs(t, st.RevokedTokens().Revoke(ctx, rt), store.ErrAlreadyExists)
}
