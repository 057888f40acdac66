package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows cross-origin reads of the gallery API from the given origins.
// "*" allows any origin. Only GET and HEAD are permitted; the API is read-only.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		MaxAge:         600,
	})
	return c.Handler
}
