package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/httpx"
	"github.com/habitloop/habitloop/pkg/slogx"
	"github.com/habitloop/habitloop/pkg/tokenx"
)

// apiError is the uniform error body every endpoint returns.
type apiError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *apiError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// Request-shape errors, written directly by handlers.
var (
	errInvalidContentType = &apiError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "Unsupported content type.",
	}
	errInvalidBody = &apiError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "Request body could not be parsed.",
	}
	errMissingFields = &apiError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "Required fields are missing.",
	}
	errServerError = &apiError{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "Something went wrong. Please try again later.",
	}
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Credential and token failures are all 401 with deliberately uniform
// wording; entitlement failures are 403. Anything unmapped is a 500 and
// the only place the underlying error gets logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	e := &apiError{StatusCode: http.StatusInternalServerError, Code: "server_error"}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		e.StatusCode = http.StatusUnauthorized
		e.Code = "invalid_credentials"
		e.Description = "Invalid credentials."

	case errors.Is(err, tokenx.ErrMalformed),
		errors.Is(err, tokenx.ErrInvalidSig),
		errors.Is(err, tokenx.ErrExpired),
		errors.Is(err, tokenx.ErrNotYetValid),
		errors.Is(err, service.ErrWrongKind),
		errors.Is(err, service.ErrWrongDomain),
		errors.Is(err, service.ErrTokenRevoked):
		e.StatusCode = http.StatusUnauthorized
		e.Code = "invalid_token"
		e.Description = "The token is invalid or has expired."

	case errors.Is(err, service.ErrInactivePrincipal):
		e.StatusCode = http.StatusForbidden
		e.Code = "inactive_principal"
		e.Description = "This account has been deactivated."

	case errors.Is(err, service.ErrInsufficientPrivilege):
		e.StatusCode = http.StatusForbidden
		e.Code = "insufficient_privilege"
		e.Description = "You are not allowed to perform this action."

	case errors.Is(err, service.ErrStaleToken):
		e.StatusCode = http.StatusForbidden
		e.Code = "stale_token"
		e.Description = "This action requires a recent password login."

	case errors.Is(err, service.ErrLoginNameTaken):
		e.StatusCode = http.StatusBadRequest
		e.Code = "login_name_taken"
		e.Description = "That login name is already in use."

	case errors.Is(err, service.ErrContactAddressTaken):
		e.StatusCode = http.StatusBadRequest
		e.Code = "contact_address_taken"
		e.Description = "That contact address is already in use."

	case errors.Is(err, store.ErrNotFound):
		e.StatusCode = http.StatusNotFound
		e.Code = "not_found"
		e.Description = "No such record."

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		e.Description = "Something went wrong. Please try again later."
	}

	e.WriteError(w)
}
