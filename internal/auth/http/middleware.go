package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/pkg/httpx"
	"github.com/habitloop/habitloop/pkg/slogx"
)

type ctxKey string

const ctxKeyAuth ctxKey = "auth"

// authInfo is what the bearer middleware hands to downstream handlers: the
// resolved principal and whether the token came straight from a password
// login.
type authInfo struct {
	principal domain.Principal
	fresh     bool
}

// authFromContext returns the authenticated principal and token freshness.
// ok is false on routes that skipped RequireAuth.
func authFromContext(ctx context.Context) (domain.Principal, bool, bool) {
	a, ok := ctx.Value(ctxKeyAuth).(authInfo)
	return a.principal, a.fresh, ok
}

// RequireAuth validates the bearer access token against one principal
// domain and injects the resolved principal and freshness into the request
// context. Token failures are 401 with a WWW-Authenticate challenge
// (RFC 6750); a deactivated principal is 403.
func RequireAuth(tokens *service.TokenService, d domain.Domain) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			principal, claims, err := tokens.Validate(ctx, raw, domain.TokenKindAccess, d)
			if err != nil {
				if errors.Is(err, service.ErrInactivePrincipal) {
					writeServiceError(w, r, err)
					return
				}
				log.Warn("bearer token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = context.WithValue(ctx, ctxKeyAuth, authInfo{
				principal: principal,
				fresh:     claims.Fresh,
			})
			// The subject also keys per-user rate limiting.
			ctx = httpx.ContextWithSubject(ctx, principal.LoginName)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeBearerError writes an RFC 6750 bearer challenge. The description is
// deliberately generic; the specific failure is only logged.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	(&apiError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_token",
		Description: desc,
	}).WriteError(w)
}
