package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/pkg/httpx"
)

// RegisterHandler serves public self-registration in the user domain.
// There is deliberately no admin twin; administrative accounts are only
// created by existing privileged administrators.
type RegisterHandler struct {
	PrincipalService *service.PrincipalService
}

type registerRequest struct {
	LoginName      string `json:"login_name"`
	ContactAddress string `json:"contact_address"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
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

	p, err := h.PrincipalService.Register(r.Context(), domain.DomainUser, service.CreateParams{
		LoginName:      req.LoginName,
		ContactAddress: req.ContactAddress,
		Password:       req.Password,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newPrincipalResponse(p))
}
