package middleware

import (
	"net/http"

	"clipmerge/internal/logging"

	"github.com/rs/cors"
)

// CORS allows browser uploads from allowedOrigins. Credentials are allowed,
// so a wildcard origin is rejected by the underlying library and echoed
// per-request instead.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	logging.Debug("CORS enabled for origins: %v", allowedOrigins)
	return c.Handler
}
