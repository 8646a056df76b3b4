package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/pkg/httpx"
	"github.com/habitloop/habitloop/pkg/idx"
)

// AdminUsersHandler is the administrative management surface over
// user-domain principals. Every route requires a privileged admin-domain
// bearer token; the guard checks live here at the boundary.
type AdminUsersHandler struct {
	PrincipalService *service.PrincipalService
}

// requirePrivileged runs the PrivilegedOnly gate and returns the caller.
func (h *AdminUsersHandler) requirePrivileged(w http.ResponseWriter, r *http.Request) (domain.Principal, bool, bool) {
	caller, fresh, ok := authFromContext(r.Context())
	if !ok {
		writeBearerError(w, "missing bearer token")
		return domain.Principal{}, false, false
	}
	if err := service.GuardErr(service.Authorize(caller, fresh, service.PrivilegedOnly{})); err != nil {
		writeServiceError(w, r, err)
		return domain.Principal{}, false, false
	}
	return caller, fresh, true
}

// pathID parses the {id} path segment. A malformed id reads the same as a
// missing record.
func pathID(w http.ResponseWriter, r *http.Request) (idx.ID, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		(&apiError{
			StatusCode:  http.StatusNotFound,
			Code:        "not_found",
			Description: "No such record.",
		}).WriteError(w)
		return idx.Zero, false
	}
	return id, true
}

// HandleList serves GET /v1/admin/users with offset/limit pagination.
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.requirePrivileged(w, r); !ok {
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	principals, err := h.PrincipalService.List(r.Context(), domain.DomainUser, offset, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newPrincipalListResponse(principals))
}

type createUserRequest struct {
	LoginName      string `json:"login_name"`
	ContactAddress string `json:"contact_address"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Privileged     bool   `json:"privileged"`
}

// HandleCreate serves POST /v1/admin/users.
func (h *AdminUsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.requirePrivileged(w, r); !ok {
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	req.LoginName = strings.TrimSpace(req.LoginName)
	req.ContactAddress = strings.TrimSpace(req.ContactAddress)
	if req.LoginName == "" || req.ContactAddress == "" || req.Password == "" {
		errMissingFields.WriteError(w)
		return
	}

	p, err := h.PrincipalService.Create(r.Context(), domain.DomainUser, service.CreateParams{
		LoginName:      req.LoginName,
		ContactAddress: req.ContactAddress,
		Password:       req.Password,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Privileged:     req.Privileged,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newPrincipalResponse(p))
}

// HandleGet serves GET /v1/admin/users/{id}.
func (h *AdminUsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.requirePrivileged(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.PrincipalService.Get(r.Context(), domain.DomainUser, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newPrincipalResponse(p))
}

type updateUserRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	ContactAddress *string `json:"contact_address"`
	Privileged     *bool   `json:"privileged"`
}

// HandlePatch serves PATCH /v1/admin/users/{id}. Toggling the privilege
// flag is additionally gated on the caller's token freshness.
func (h *AdminUsersHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, fresh, ok := h.requirePrivileged(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	if req.Privileged != nil {
		if err := service.GuardErr(service.Authorize(caller, fresh, service.FreshRequired{})); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := h.PrincipalService.SetPrivileged(ctx, domain.DomainUser, id, *req.Privileged); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	current, err := h.PrincipalService.Get(ctx, domain.DomainUser, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	firstName := current.FirstName
	lastName := current.LastName
	contactAddress := current.ContactAddress
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

	updated, err := h.PrincipalService.UpdateProfile(ctx, domain.DomainUser, id, firstName, lastName, contactAddress)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newPrincipalResponse(updated))
}

// HandleDelete serves DELETE /v1/admin/users/{id}. Deleting the record
// that matches the caller's own id is refused; an administrator cannot
// remove themselves out from under an active session.
func (h *AdminUsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, fresh, ok := h.requirePrivileged(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if service.Authorize(caller, fresh, service.SelfOnly{Owner: id}).Allowed {
		writeServiceError(w, r, service.ErrInsufficientPrivilege)
		return
	}

	if err := h.PrincipalService.Delete(r.Context(), domain.DomainUser, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleActivate and HandleDeactivate serve the activation toggles.
func (h *AdminUsersHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AdminUsersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminUsersHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	if _, _, ok := h.requirePrivileged(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.PrincipalService.SetActive(r.Context(), domain.DomainUser, id, active); err != nil {
		writeServiceError(w, r, err)
		return
	}

	p, err := h.PrincipalService.Get(r.Context(), domain.DomainUser, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newPrincipalResponse(p))
}
