package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/pkg/httpx"
)

// MeHandler serves the authenticated principal's own record in one domain.
type MeHandler struct {
	PrincipalService *service.PrincipalService
	Domain           domain.Domain
}

// HandleGet returns the caller's own record.
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, _, ok := authFromContext(r.Context())
	if !ok {
		writeBearerError(w, "missing bearer token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newPrincipalResponse(p))
}

// updateMeRequest uses pointers so an omitted field leaves the current
// value untouched.
type updateMeRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	ContactAddress *string `json:"contact_address"`
	Password       *string `json:"password"`
}

// HandlePatch updates the caller's own profile. Changing the password is
// gated on token freshness: a refresh-derived session must re-prove the
// current password via login first.
func (h *MeHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, fresh, ok := authFromContext(ctx)
	if !ok {
		writeBearerError(w, "missing bearer token")
		return
	}

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	if req.Password != nil {
		if err := service.GuardErr(service.Authorize(p, fresh, service.FreshRequired{})); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if *req.Password == "" {
			errMissingFields.WriteError(w)
			return
		}
		if err := h.PrincipalService.ChangePassword(ctx, h.Domain, p.ID, *req.Password); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	firstName := p.FirstName
	lastName := p.LastName
	contactAddress := p.ContactAddress
	if req.FirstName != nil {
		firstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		lastName = strings.TrimSpace(*req.LastName)
	}
	if req.ContactAddress != nil {
		contactAddress = strings.TrimSpace(*req.ContactAddress)
		if contactAddress == "" {
			errMissingFields.WriteError(w)
			return
		}
	}

	updated, err := h.PrincipalService.UpdateProfile(ctx, h.Domain, p.ID, firstName, lastName, contactAddress)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newPrincipalResponse(updated))
}
