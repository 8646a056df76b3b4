package httpx

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS builds the cross-origin middleware. An empty origin list means
// allow-all, suitable for local development only.
func CORS(origins []string) Middleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Window"},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	return handler.Handler
}
