package service

import (
	"context"
	"testing"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &PrincipalService{Store: st}

	params := CreateParams{
		LoginName:      "eve",
		ContactAddress: "eve@example.test",
		Password:       "pw-eve-123",
		FirstName:      "Eve",
		LastName:       "Example",
		Privileged:     true, // must be ignored on the public path
	}

	p, err := svc.Register(ctx, domain.DomainUser, params)
	require.NoError(t, err)
	require.Equal(t, "eve", p.LoginName)
	require.True(t, p.Active)
	require.False(t, p.Privileged)
	require.False(t, p.ID.IsZero())
	require.NoError(t, cryptox.VerifyPassword("pw-eve-123", p.PasswordHash))

	t.Run("duplicate login name", func(t *testing.T) {
		dup := params
		dup.ContactAddress = "other@example.test"
		_, err := svc.Register(ctx, domain.DomainUser, dup)
		require.ErrorIs(t, err, ErrLoginNameTaken)
	})

	t.Run("duplicate contact address", func(t *testing.T) {
		dup := params
		dup.LoginName = "eve2"
		_, err := svc.Register(ctx, domain.DomainUser, dup)
		require.ErrorIs(t, err, ErrContactAddressTaken)
	})

	t.Run("same identifiers are free in the other silo", func(t *testing.T) {
		p, err := svc.Register(ctx, domain.DomainAdmin, params)
		require.NoError(t, err)
		require.Equal(t, "eve", p.LoginName)
	})
}

func TestCreateHonoursPrivilegeFlag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &PrincipalService{Store: st}

	p, err := svc.Create(ctx, domain.DomainAdmin, CreateParams{
		LoginName:      "root",
		ContactAddress: "root@example.test",
		Password:       "pw-root-123",
		Privileged:     true,
	})
	require.NoError(t, err)
	require.True(t, p.Privileged)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &PrincipalService{Store: st}

	fred := seedPrincipal(t, st, domain.DomainUser, "fred", "pw-fred-1", false)
	seedPrincipal(t, st, domain.DomainUser, "gina", "pw-gina-1", false)

	updated, err := svc.UpdateProfile(ctx, domain.DomainUser, fred.ID, "Frederick", "Frost", "frederick@example.test")
	require.NoError(t, err)
	require.Equal(t, "Frederick", updated.FirstName)
	require.Equal(t, "Frost", updated.LastName)
	require.Equal(t, "frederick@example.test", updated.ContactAddress)
	require.Equal(t, fred.LoginName, updated.LoginName)

	t.Run("contact address conflicts surface as taken", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, domain.DomainUser, fred.ID, "Frederick", "Frost", "gina@example.test")
		require.ErrorIs(t, err, ErrContactAddressTaken)
	})

	t.Run("unknown principal", func(t *testing.T) {
		ghost := seedPrincipal(t, st, domain.DomainUser, "ghost", "pw-ghost", false)
		require.NoError(t, st.Principals(domain.DomainUser).Delete(ctx, ghost.ID))

		_, err := svc.UpdateProfile(ctx, domain.DomainUser, ghost.ID, "G", "Host", "ghost2@example.test")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTestTokenService(t, st)
	auth := NewAuthService(tokens, st)
	svc := &PrincipalService{Store: st}

	hank := seedPrincipal(t, st, domain.DomainUser, "hank", "old-password", false)

	require.NoError(t, svc.ChangePassword(ctx, domain.DomainUser, hank.ID, "new-password"))

	_, err := auth.Authenticate(ctx, domain.DomainUser, "hank", "old-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Authenticate(ctx, domain.DomainUser, "hank", "new-password")
	require.NoError(t, err)
}

func TestListClampsPaging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &PrincipalService{Store: st}

	seedPrincipal(t, st, domain.DomainUser, "ann", "pw-ann-11", false)
	seedPrincipal(t, st, domain.DomainUser, "ben", "pw-ben-11", false)
	seedPrincipal(t, st, domain.DomainUser, "cat", "pw-cat-11", false)

	all, err := svc.List(ctx, domain.DomainUser, -5, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	page, err := svc.List(ctx, domain.DomainUser, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)

	empty, err := svc.List(ctx, domain.DomainAdmin, 0, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSetFlagsAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &PrincipalService{Store: st}

	ivy := seedPrincipal(t, st, domain.DomainUser, "ivy", "pw-ivy-11", false)

	require.NoError(t, svc.SetActive(ctx, domain.DomainUser, ivy.ID, false))
	p, err := svc.Get(ctx, domain.DomainUser, ivy.ID)
	require.NoError(t, err)
	require.False(t, p.Active)

	require.NoError(t, svc.SetPrivileged(ctx, domain.DomainUser, ivy.ID, true))
	p, err = svc.Get(ctx, domain.DomainUser, ivy.ID)
	require.NoError(t, err)
	require.True(t, p.Privileged)

	require.NoError(t, svc.Delete(ctx, domain.DomainUser, ivy.ID))
	_, err = svc.Get(ctx, domain.DomainUser, ivy.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, domain.DomainUser, ivy.ID), store.ErrNotFound)
}
