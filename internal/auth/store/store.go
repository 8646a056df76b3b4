package store

import (
	"context"
	"errors"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Principal repos are handed out per domain so the
// auth core stays a single generic implementation over both silos.
type Store interface {
	// Principals returns the repo backing the given domain's table.
	Principals(d domain.Domain) Principals

	// RevokedTokens is the rotation denylist for refresh token ids.
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed. Use it for
	// multi-step operations that must be atomic (refresh rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Commit/Rollback are handled by WithTx.
type Tx interface {
	Principals(d domain.Domain) Principals
	RevokedTokens() RevokedTokens
}

// Principals is the credential store adapter for one principal domain.
type Principals interface {
	// GetByID returns a principal by id.
	GetByID(ctx context.Context, id idx.ID) (domain.Principal, error)

	// GetByLoginName is the lookup used for login and token subjects.
	GetByLoginName(ctx context.Context, loginName string) (domain.Principal, error)

	// GetByContactAddress supports uniqueness checks during registration.
	GetByContactAddress(ctx context.Context, address string) (domain.Principal, error)

	// Create inserts a new principal (id supplied by the app via ULID).
	// Duplicate login name or contact address yields ErrAlreadyExists.
	Create(ctx context.Context, p domain.Principal) error

	// List returns principals ordered by creation, paginated.
	List(ctx context.Context, offset, limit int) ([]domain.Principal, error)

	// UpdateProfile mutates name fields and contact address.
	UpdateProfile(ctx context.Context, id idx.ID, firstName, lastName, contactAddress string) error

	// UpdatePasswordHash sets the password hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id idx.ID, newHash string) error

	// SetActive flips the activation flag.
	SetActive(ctx context.Context, id idx.ID, active bool) error

	// SetPrivileged flips the privilege flag.
	SetPrivileged(ctx context.Context, id idx.ID, privileged bool) error

	// UpdateLastLogin stamps a successful credential login.
	UpdateLastLogin(ctx context.Context, id idx.ID, at time.Time) error

	// Delete removes the principal.
	Delete(ctx context.Context, id idx.ID) error

	// IsEmpty reports whether the domain has no principals yet.
	IsEmpty(ctx context.Context) (bool, error)
}

// RevokedTokens stores rotated-out refresh token ids until their natural
// expiry. Presence of a jti means the token must be rejected.
type RevokedTokens interface {
	// Revoke records a jti. Revoking the same jti twice returns
	// ErrAlreadyExists, which refresh rotation treats as reuse.
	Revoke(ctx context.Context, t domain.RevokedToken) error

	// IsRevoked reports whether a jti has been rotated out.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired removes denylist rows whose token has expired anyway.
	DeleteExpired(ctx context.Context) error
}
