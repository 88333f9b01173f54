package auth

import (
	"context"

	"github.com/adicipta/procure-api/internal/domain"
)

// UserContext carries the authenticated actor through the request
type UserContext struct {
	UserID string
	Email  string
	Name   string
	Roles  []domain.UserRoleType
}

type contextKey string

const userContextKey contextKey = "user"

// WithUserContext stores the user context on the request context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts the user context, if any
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts the user context or panics. Only for handlers
// behind the authentication middleware.
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("auth: no user context on request")
	}
	return user
}

// HasRole reports whether the user has the given role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user has at least one of the roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}
