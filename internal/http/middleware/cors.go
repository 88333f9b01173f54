package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/config"
)

// CORS builds the cross-origin policy from configuration. A wildcard
// entry allows any origin; an empty list allows everything in
// development and nothing in production.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "x-api-key"},
		ExposedHeaders:   []string{"Location", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	switch {
	case containsWildcard(cfg.AllowedOrigins):
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return origin != ""
		}
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
	case environment == "development":
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return true
		}
	default:
		logger.Warn("no CORS origins configured, cross-origin requests will be denied")
		options.AllowedOrigins = []string{}
	}

	return cors.Handler(options)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
