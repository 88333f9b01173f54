package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adicipta/procure-api/internal/config"
	"github.com/adicipta/procure-api/internal/domain"
)

var (
	// ErrInvalidToken indicates the token failed signature or claim checks
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the token is past its expiry
	ErrExpiredToken = errors.New("token expired")
)

// JWTValidator verifies HMAC-signed bearer tokens issued by the identity
// gateway in front of this API.
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a validator from the security configuration
func NewJWTValidator(cfg *config.SecurityConfig) (*JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}, nil
}

// ValidateToken parses and verifies a bearer token and maps its claims
// onto a UserContext.
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID := extractString(claims, "sub", "oid")
	if userID == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	return &UserContext{
		UserID: userID,
		Email:  extractString(claims, "email", "preferred_username"),
		Name:   extractString(claims, "name"),
		Roles:  extractRoles(claims),
	}, nil
}

// extractString returns the first non-empty string claim among keys
func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

func extractRoles(claims jwt.MapClaims) []domain.UserRoleType {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}
	roles := make([]domain.UserRoleType, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, domain.UserRoleType(s))
		}
	}
	return roles
}
