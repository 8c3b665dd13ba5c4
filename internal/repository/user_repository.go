package repository

import (
	"context"
	"strings"

	"github.com/electrade/network-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFilters defines filter options for user listing
type UserFilters struct {
	Search   string
	Country  string
	IsActive *bool
}

// userSortableFields maps API field names to database column names
var userSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"country":   "country",
}

// UserRepository handles user data access operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user in the database
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by its ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail finds a user by email, or nil when none exists
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes a user and their network memberships
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM network_employees WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, "id = ?", id).Error
	})
}

// List returns a paginated list of users with filter and sort options
func (r *UserRepository) List(ctx context.Context, page, pageSize int, filters *UserFilters, sort SortConfig) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	page, pageSize = normalizePagination(page, pageSize, UserDefaultPageSize, UserMaxPageSize)

	query := r.db.WithContext(ctx).Model(&domain.User{})

	if filters != nil {
		if filters.Search != "" {
			pattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where(
				"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		if filters.Country != "" {
			query = query.Where("LOWER(country) = LOWER(?)", filters.Country)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, userSortableFields, "created_at")

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(orderClause).Find(&users).Error

	return users, total, err
}

// ListByIDs returns the users matching the given ids
func (r *UserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}
