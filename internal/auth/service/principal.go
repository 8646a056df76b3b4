package service

import (
	"context"
	"errors"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/cryptox"
	"github.com/habitloop/habitloop/pkg/idx"
)

// PrincipalService manages principal records: self-registration, admin
// creation, profile and flag updates. It never returns or logs password
// material.
type PrincipalService struct {
	Store store.Store
}

// CreateParams carries everything needed to create a principal. The
// plaintext password is hashed here and discarded.
type CreateParams struct {
	LoginName      string
	ContactAddress string
	Password       string
	FirstName      string
	LastName       string
	Privileged     bool
}

// Register handles public self-registration: the new principal is always
// active and unprivileged regardless of params.
func (s *PrincipalService) Register(ctx context.Context, d domain.Domain, params CreateParams) (domain.Principal, error) {
	params.Privileged = false
	return s.create(ctx, d, params)
}

// Create is the administrative creation path; the privilege flag is
// honoured as given.
func (s *PrincipalService) Create(ctx context.Context, d domain.Domain, params CreateParams) (domain.Principal, error) {
	return s.create(ctx, d, params)
}

func (s *PrincipalService) create(ctx context.Context, d domain.Domain, params CreateParams) (domain.Principal, error) {
	repo := s.Store.Principals(d)

	// Distinct conflict errors for the two unique columns; the table's
	// unique constraints remain the final arbiter under races.
	if _, err := repo.GetByLoginName(ctx, params.LoginName); err == nil {
		return domain.Principal{}, ErrLoginNameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, err
	}
	if _, err := repo.GetByContactAddress(ctx, params.ContactAddress); err == nil {
		return domain.Principal{}, ErrContactAddressTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, err
	}

	hash, err := cryptox.HashPassword(params.Password)
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{
		ID:             idx.New(),
		LoginName:      params.LoginName,
		ContactAddress: params.ContactAddress,
		PasswordHash:   hash,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Active:         true,
		Privileged:     params.Privileged,
	}

	if err := repo.Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, ErrLoginNameTaken
		}
		return domain.Principal{}, err
	}

	return repo.GetByID(ctx, p.ID)
}

// Get fetches a principal by id.
func (s *PrincipalService) Get(ctx context.Context, d domain.Domain, id idx.ID) (domain.Principal, error) {
	return s.Store.Principals(d).GetByID(ctx, id)
}

// List returns a page of principals.
func (s *PrincipalService) List(ctx context.Context, d domain.Domain, offset, limit int) ([]domain.Principal, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Principals(d).List(ctx, offset, limit)
}

// UpdateProfile changes name fields and contact address.
func (s *PrincipalService) UpdateProfile(
	ctx context.Context,
	d domain.Domain,
	id idx.ID,
	firstName, lastName, contactAddress string,
) (domain.Principal, error) {
	repo := s.Store.Principals(d)

	if err := repo.UpdateProfile(ctx, id, firstName, lastName, contactAddress); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, ErrContactAddressTaken
		}
		return domain.Principal{}, err
	}
	return repo.GetByID(ctx, id)
}

// ChangePassword hashes and stores a new password.
func (s *PrincipalService) ChangePassword(ctx context.Context, d domain.Domain, id idx.ID, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Principals(d).UpdatePasswordHash(ctx, id, hash)
}

// SetActive flips the activation flag.
func (s *PrincipalService) SetActive(ctx context.Context, d domain.Domain, id idx.ID, active bool) error {
	return s.Store.Principals(d).SetActive(ctx, id, active)
}

// SetPrivileged flips the privilege flag.
func (s *PrincipalService) SetPrivileged(ctx context.Context, d domain.Domain, id idx.ID, privileged bool) error {
	return s.Store.Principals(d).SetPrivileged(ctx, id, privileged)
}

// Delete removes a principal.
func (s *PrincipalService) Delete(ctx context.Context, d domain.Domain, id idx.ID) error {
	return s.Store.Principals(d).Delete(ctx, id)
}
