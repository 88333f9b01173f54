package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/config"
	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/tests/testutil"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

func newValidator(t *testing.T) *auth.JWTValidator {
	t.Helper()
	validator, err := auth.NewJWTValidator(&config.SecurityConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	return validator
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func okHandler(captured **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			if user, ok := auth.FromContext(r.Context()); ok {
				*captured = user
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateWithAPIKey(t *testing.T) {
	m := auth.NewMiddleware(newValidator(t), "service-key", testutil.NewTestLogger())

	var user *auth.UserContext
	handler := m.Authenticate(okHandler(&user))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders", nil)
	req.Header.Set("x-api-key", "service-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	require.Equal(t, "system", user.UserID)
	require.True(t, user.HasRole(domain.RoleAPIService))
}

func TestAuthenticateRejectsWrongAPIKey(t *testing.T) {
	m := auth.NewMiddleware(newValidator(t), "service-key", testutil.NewTestLogger())
	handler := m.Authenticate(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders", nil)
	req.Header.Set("x-api-key", "wrong-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateWithBearerToken(t *testing.T) {
	m := auth.NewMiddleware(newValidator(t), "", testutil.NewTestLogger())

	var user *auth.UserContext
	handler := m.Authenticate(okHandler(&user))

	token := signToken(t, jwt.MapClaims{
		"sub":   "user-42",
		"name":  "Jane Purchasing",
		"email": "jane@example.com",
		"roles": []string{"purchasing", "viewer"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	require.Equal(t, "user-42", user.UserID)
	require.Equal(t, "Jane Purchasing", user.Name)
	require.True(t, user.HasRole(domain.RolePurchasing))
	require.False(t, user.HasRole(domain.RoleFinance))
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	m := auth.NewMiddleware(newValidator(t), "", testutil.NewTestLogger())
	handler := m.Authenticate(okHandler(nil))

	token := signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsMissingCredentials(t *testing.T) {
	m := auth.NewMiddleware(newValidator(t), "service-key", testutil.NewTestLogger())
	handler := m.Authenticate(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	validator := newValidator(t)

	token := signToken(t, jwt.MapClaims{
		"name": "No Subject",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	_, err := validator.ValidateToken(token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireRole(t *testing.T) {
	m := auth.NewMiddleware(newValidator(t), "", testutil.NewTestLogger())
	handler := m.RequireRole(domain.RoleFinance, domain.RoleAdmin)(okHandler(nil))

	t.Run("allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/PO-1/payments", nil)
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
			UserID: "user-1",
			Roles:  []domain.UserRoleType{domain.RoleFinance},
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/PO-1/payments", nil)
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
			UserID: "user-2",
			Roles:  []domain.UserRoleType{domain.RoleViewer},
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/PO-1/payments", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
