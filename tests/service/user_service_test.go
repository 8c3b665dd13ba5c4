package service_test

import (
	"context"
	"testing"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/config"
	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/electrade/network-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createUserService(db *gorm.DB) *service.UserService {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-for-user-service",
		TokenTTL:  3600,
	}, "network-api-test")
	return service.NewUserService(repository.NewUserRepository(db), tokens, zap.NewNop())
}

func registrationRequest(email string) *domain.CreateUserRequest {
	return &domain.CreateUserRequest{
		Email:     email,
		Password:  "correct horse battery",
		FirstName: "Ola",
		LastName:  "Nordmann",
	}
}

func TestUserService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)

	t.Run("registration is open to anonymous callers", func(t *testing.T) {
		created, err := svc.Create(context.Background(), registrationRequest("ola@example.com"))
		require.NoError(t, err)
		assert.Equal(t, "ola@example.com", created.Email)
		assert.True(t, created.IsActive)
		assert.False(t, created.IsSuperUser)
		assert.False(t, created.IsStaff)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), registrationRequest("ola@example.com"))
		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})
}

func TestUserService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)

	_, err := svc.Create(context.Background(), registrationRequest("kari@example.com"))
	require.NoError(t, err)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "kari@example.com",
			Password: "correct horse battery",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.ExpiresAt)
		assert.Equal(t, "kari@example.com", resp.User.Email)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "kari@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("inactive account cannot log in", func(t *testing.T) {
		err := db.Model(&domain.User{}).
			Where("email = ?", "kari@example.com").
			Update("is_active", false).Error
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "kari@example.com",
			Password: "correct horse battery",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestUserService_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)

	owner := testutil.CreateTestUser(t, db, "owner@example.com")

	t.Run("owner reads own profile", func(t *testing.T) {
		got, err := svc.GetByID(testutil.AuthContext(owner), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.ID)
	})

	t.Run("another user is denied", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db, "other@example.com")
		_, err := svc.GetByID(testutil.AuthContext(other), owner.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("superuser reads any profile", func(t *testing.T) {
		ctx := testutil.SuperUserContext(t, db)
		got, err := svc.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.ID)
	})

	t.Run("missing profile reports not found", func(t *testing.T) {
		ctx := testutil.SuperUserContext(t, db)
		_, err := svc.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestUserService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)

	owner := testutil.CreateTestUser(t, db, "edit-me@example.com")
	originalHash := owner.PasswordHash

	t.Run("owner updates profile without touching the password", func(t *testing.T) {
		updated, err := svc.Update(testutil.AuthContext(owner), owner.ID, &domain.UpdateUserRequest{
			FirstName: "Kari",
			LastName:  "Hansen",
			Country:   "Norway",
		})
		require.NoError(t, err)
		assert.Equal(t, "Kari", updated.FirstName)
		assert.Equal(t, "Norway", updated.Country)

		var stored domain.User
		require.NoError(t, db.First(&stored, "id = ?", owner.ID).Error)
		assert.Equal(t, originalHash, stored.PasswordHash)
	})

	t.Run("supplying a password rehashes it", func(t *testing.T) {
		_, err := svc.Update(testutil.AuthContext(owner), owner.ID, &domain.UpdateUserRequest{
			Password:  "a brand new passphrase",
			FirstName: "Kari",
			LastName:  "Hansen",
		})
		require.NoError(t, err)

		var stored domain.User
		require.NoError(t, db.First(&stored, "id = ?", owner.ID).Error)
		assert.NotEqual(t, originalHash, stored.PasswordHash)
		assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "a brand new passphrase"))
	})

	t.Run("another user cannot update", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db, "intruder@example.com")
		_, err := svc.Update(testutil.AuthContext(other), owner.ID, &domain.UpdateUserRequest{
			FirstName: "Hacked",
			LastName:  "User",
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestUserService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)

	owner := testutil.CreateTestUser(t, db, "leaving@example.com")

	require.NoError(t, svc.Delete(testutil.AuthContext(owner), owner.ID))

	ctx := testutil.SuperUserContext(t, db)
	_, err := svc.GetByID(ctx, owner.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_Me(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)

	t.Run("returns the authenticated profile", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db, "me@example.com")
		me, err := svc.Me(testutil.AuthContext(user))
		require.NoError(t, err)
		assert.Equal(t, user.ID, me.ID)
	})

	t.Run("unauthenticated context is rejected", func(t *testing.T) {
		_, err := svc.Me(context.Background())
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestUserService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createUserService(db)
	ctx := testutil.SuperUserContext(t, db)

	testutil.CreateTestUser(t, db, "a@example.com")
	testutil.CreateTestUser(t, db, "b@example.com")

	t.Run("superuser lists accounts", func(t *testing.T) {
		result, err := svc.List(ctx, 1, 10, nil, repository.DefaultSortConfig())
		require.NoError(t, err)
		// Two fixtures plus the superuser itself
		assert.Equal(t, int64(3), result.Total)
	})

	t.Run("regular account is denied", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db, "c@example.com")
		_, err := svc.List(testutil.AuthContext(user), 1, 10, nil, repository.DefaultSortConfig())
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}
