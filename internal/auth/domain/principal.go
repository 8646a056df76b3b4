package domain

import (
	"errors"
	"time"

	"github.com/habitloop/habitloop/pkg/idx"
)

// Domain is the principal namespace a record and its tokens are scoped
// to. Regular users and the administrative silo share token mechanics but
// never cross-validate.
type Domain string

const (
	DomainUser  Domain = "user"
	DomainAdmin Domain = "admin"
)

// ErrUnknownDomain reports a domain tag outside the closed set.
var ErrUnknownDomain = errors.New("domain: unknown principal domain")

// ParseDomain validates a domain tag from config or transport.
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainUser:
		return DomainUser, nil
	case DomainAdmin:
		return DomainAdmin, nil
	default:
		return "", ErrUnknownDomain
	}
}

func (d Domain) String() string { return string(d) }

// Principal is an identity record in one domain. LoginName and
// ContactAddress are unique within their domain. PasswordHash never
// leaves the store layer in any serialized form.
type Principal struct {
	ID             idx.ID
	LoginName      string
	ContactAddress string
	PasswordHash   string `json:"-"`
	FirstName      string
	LastName       string
	Active         bool
	Privileged     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastLogin      *time.Time
}
