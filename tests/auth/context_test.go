package auth_test

import (
	"context"
	"testing"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext_RoundTrip(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "ctx@example.com", IsActive: true}
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{User: user})

	userCtx, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, userCtx.User.ID)

	assert.Equal(t, user, auth.UserFromContext(ctx))
}

func TestUserContext_Missing(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	assert.Nil(t, auth.UserFromContext(context.Background()))

	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})
}
