package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/authz"
	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/mapper"
	"github.com/electrade/network-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles business logic for user accounts
type UserService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userRepo *repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Create registers a new account. Registration is open; accounts start
// active and without elevated flags.
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if err := authorize(ctx, authz.ActionUserCreate, authz.Target{}); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:          req.Email,
		PasswordHash:   hash,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PatronymicName: req.PatronymicName,
		Country:        req.Country,
		Phone:          req.Phone,
		AvatarURL:      req.AvatarURL,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	dto := mapper.UserToDTO(user)
	return &dto, nil
}

// GetByID retrieves a user profile. Only the owner or a superuser may
// read it.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, authz.ActionUserRetrieve, authz.Target{User: user}); err != nil {
		return nil, err
	}

	dto := mapper.UserToDTO(user)
	return &dto, nil
}

// List returns a paginated list of users
func (s *UserService) List(ctx context.Context, page, pageSize int, filters *repository.UserFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if err := authorize(ctx, authz.ActionUserList, authz.Target{}); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repository.UserDefaultPageSize
	}
	if pageSize > repository.UserMaxPageSize {
		pageSize = repository.UserMaxPageSize
	}
	return paginated(mapper.UsersToDTOs(users), total, page, pageSize), nil
}

// Update updates a user profile. The role flags are not touchable
// through this path.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, authz.ActionUserUpdate, authz.Target{User: user}); err != nil {
		return nil, err
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PatronymicName = req.PatronymicName
	user.Country = req.Country
	user.Phone = req.Phone
	user.AvatarURL = req.AvatarURL

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	dto := mapper.UserToDTO(user)
	return &dto, nil
}

// Delete removes a user account
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, authz.ActionUserDelete, authz.Target{User: user}); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

// Login verifies credentials and issues an access token. Inactive
// accounts are rejected with the same error as a bad password.
func (s *UserService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      mapper.UserToDTO(user),
	}, nil
}

// Me returns the authenticated account's own profile
func (s *UserService) Me(ctx context.Context) (*domain.UserDTO, error) {
	actor := auth.UserFromContext(ctx)
	if actor == nil {
		return nil, ErrUnauthorized
	}
	dto := mapper.UserToDTO(actor)
	return &dto, nil
}

func (s *UserService) loadUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
