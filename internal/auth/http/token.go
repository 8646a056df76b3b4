package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/pkg/httpx"
)

// LoginHandler serves the password login endpoint of one principal domain.
// The request is form-encoded, in the OAuth2 password-grant shape.
type LoginHandler struct {
	AuthService *service.AuthService
	Domain      domain.Domain
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		errInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		errMissingFields.WriteError(w)
		return
	}

	pair, err := h.AuthService.Authenticate(r.Context(), h.Domain, username, password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// RefreshHandler serves the session refresh endpoint of one principal
// domain. The presented refresh token is rotated: it stops working the
// moment a new pair is issued.
type RefreshHandler struct {
	TokenService *service.TokenService
	Domain       domain.Domain
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		errMissingFields.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), req.RefreshToken, h.Domain)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}
