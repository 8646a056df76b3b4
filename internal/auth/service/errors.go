package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords at login. One error for both, always, so callers can't
	// enumerate login names.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrWrongKind reports an access token presented where a refresh
	// token is expected, or vice versa.
	ErrWrongKind = errors.New("wrong_token_kind")

	// ErrWrongDomain reports cross-domain token misuse (an admin-silo
	// token on a user-domain action, or the inverse).
	ErrWrongDomain = errors.New("wrong_token_domain")

	// ErrTokenRevoked reports a refresh token that was already rotated out.
	ErrTokenRevoked = errors.New("token_revoked")

	// ErrInactivePrincipal reports an otherwise-valid token whose
	// principal has been deactivated.
	ErrInactivePrincipal = errors.New("inactive_principal")

	// ErrInsufficientPrivilege reports a known caller who is not entitled.
	ErrInsufficientPrivilege = errors.New("insufficient_privilege")

	// ErrStaleToken reports a freshness-required action attempted with a
	// refresh-derived token.
	ErrStaleToken = errors.New("stale_token")

	// ErrInvalidConfiguration is fatal: non-positive TTLs or a missing
	// signing key abort process start.
	ErrInvalidConfiguration = errors.New("invalid_configuration")

	// ErrLoginNameTaken / ErrContactAddressTaken report registration
	// conflicts within a domain.
	ErrLoginNameTaken      = errors.New("login_name_taken")
	ErrContactAddressTaken = errors.New("contact_address_taken")
)
