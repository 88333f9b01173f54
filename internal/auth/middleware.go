package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
)

// Middleware authenticates incoming requests via API key or bearer token
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	logger       *zap.Logger
}

// NewMiddleware creates the authentication middleware
func NewMiddleware(jwtValidator *JWTValidator, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: jwtValidator,
		apiKey:       apiKey,
		logger:       logger,
	}
}

// Authenticate rejects requests without valid credentials. An x-api-key
// header is checked first (service-to-service callers), then a bearer
// token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("x-api-key"); key != "" {
			if !m.validateAPIKey(key) {
				m.logger.Warn("request with invalid api key",
					zap.String("path", r.URL.Path))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			user := &UserContext{
				UserID: "system",
				Name:   "API Service",
				Roles:  []domain.UserRoleType{domain.RoleAPIService, domain.RoleAdmin},
			}
			m.logger.Debug("request authenticated",
				zap.String("auth_type", "api_key"),
				zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
			return
		}

		user, err := m.bearerUser(r)
		if err != nil {
			m.logger.Warn("request authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		m.logger.Debug("request authenticated",
			zap.String("auth_type", "bearer"),
			zap.String("user_id", user.UserID))
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
	})
}

// OptionalAuthenticate attaches a user context when credentials are
// present but never rejects the request.
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("x-api-key"); key != "" && m.validateAPIKey(key) {
			user := &UserContext{
				UserID: "system",
				Name:   "API Service",
				Roles:  []domain.UserRoleType{domain.RoleAPIService, domain.RoleAdmin},
			}
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
			return
		}
		if user, err := m.bearerUser(r); err == nil {
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows the request only when the authenticated user holds
// at least one of the given roles.
func (m *Middleware) RequireRole(roles ...domain.UserRoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !user.HasAnyRole(roles...) {
				m.logger.Warn("request denied by role check",
					zap.String("user_id", user.UserID),
					zap.String("path", r.URL.Path))
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) bearerUser(r *http.Request) (*UserContext, error) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrInvalidToken
	}
	return m.jwtValidator.ValidateToken(parts[1])
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
