package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/config"
	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/http/handler"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/electrade/network-api/tests/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAuthRouter(db *gorm.DB) (chi.Router, *service.UserService) {
	logger := zap.NewNop()
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "auth-handler-secret",
		TokenTTL:  3600,
	}, "network-api-test")
	userService := service.NewUserService(repository.NewUserRepository(db), tokens, logger)
	h := handler.NewAuthHandler(userService, logger)

	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)
	r.Get("/auth/me", h.Me)
	return r, userService
}

func TestAuthHandler_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router, userService := createAuthRouter(db)

	_, err := userService.Create(context.Background(), &domain.CreateUserRequest{
		Email:     "login@example.com",
		Password:  "a good password",
		FirstName: "Ola",
		LastName:  "Nordmann",
	})
	require.NoError(t, err)

	t.Run("valid credentials return a token", func(t *testing.T) {
		rr := doJSON(t, router, context.Background(), http.MethodPost, "/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "a good password",
		})
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp domain.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "login@example.com", resp.User.Email)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		rr := doJSON(t, router, context.Background(), http.MethodPost, "/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing fields are a validation error", func(t *testing.T) {
		rr := doJSON(t, router, context.Background(), http.MethodPost, "/auth/login", map[string]string{
			"email": "login@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router, _ := createAuthRouter(db)

	t.Run("authenticated request returns the profile", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db, "me@example.com")
		rr := doJSON(t, router, testutil.AuthContext(user), http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var dto domain.UserDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, user.ID, dto.ID)
	})

	t.Run("unauthenticated request is 401", func(t *testing.T) {
		rr := doJSON(t, router, context.Background(), http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
