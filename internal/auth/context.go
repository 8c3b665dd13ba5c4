package auth

import (
	"context"

	"github.com/electrade/network-api/internal/domain"
)

// UserContext holds the authenticated account for the current request.
// The full user row is loaded by the middleware so that permission rules
// can inspect the active and superuser flags without another query.
type UserContext struct {
	User *domain.User
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// UserFromContext returns the authenticated user, or nil when the request
// is unauthenticated.
func UserFromContext(ctx context.Context) *domain.User {
	if userCtx, ok := FromContext(ctx); ok {
		return userCtx.User
	}
	return nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}
