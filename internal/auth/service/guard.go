package service

import (
	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/pkg/idx"
)

// DenyReason is the machine-readable reason attached to a deny decision.
type DenyReason string

const (
	DenyNotOwner      DenyReason = "not_owner"
	DenyNotPrivileged DenyReason = "not_privileged"
	DenyStaleToken    DenyReason = "stale_token"
)

// Decision is the transient outcome of an authorization check. It is
// never persisted.
type Decision struct {
	Allowed bool
	Reason  DenyReason // set only when denied
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// Rule is a closed set of RBAC checks evaluated against a principal and
// the freshness of the token that resolved it.
type Rule interface {
	evaluate(p domain.Principal, fresh bool) Decision
}

// SelfOrPrivileged allows the resource owner or any privileged principal.
type SelfOrPrivileged struct {
	Owner idx.ID
}

func (r SelfOrPrivileged) evaluate(p domain.Principal, _ bool) Decision {
	if p.ID == r.Owner || p.Privileged {
		return allow()
	}
	return deny(DenyNotOwner)
}

// PrivilegedOnly allows only privileged principals.
type PrivilegedOnly struct{}

func (PrivilegedOnly) evaluate(p domain.Principal, _ bool) Decision {
	if p.Privileged {
		return allow()
	}
	return deny(DenyNotPrivileged)
}

// FreshRequired allows only callers whose access token came directly from
// a password login. Privilege does not override staleness.
type FreshRequired struct{}

func (FreshRequired) evaluate(_ domain.Principal, fresh bool) Decision {
	if fresh {
		return allow()
	}
	return deny(DenyStaleToken)
}

// SelfOnly allows only the resource owner; privilege does not override.
// Used inverted for deny-self checks like "cannot delete own account".
type SelfOnly struct {
	Owner idx.ID
}

func (r SelfOnly) evaluate(p domain.Principal, _ bool) Decision {
	if p.ID == r.Owner {
		return allow()
	}
	return deny(DenyNotOwner)
}

// Authorize evaluates one rule. Pure and stateless: no I/O, safe on any
// number of concurrent requests. The freshness flag comes from the
// validated token, passed explicitly rather than inferred.
func Authorize(p domain.Principal, fresh bool, rule Rule) Decision {
	return rule.evaluate(p, fresh)
}

// GuardErr maps a deny decision onto the service error taxonomy.
func GuardErr(d Decision) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == DenyStaleToken {
		return ErrStaleToken
	}
	return ErrInsufficientPrivilege
}
