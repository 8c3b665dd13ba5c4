package repository

import (
	"context"
	"strings"

	"github.com/electrade/network-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilters defines filter options for product listing
type ProductFilters struct {
	Search string
	Name   string
	Model  string
}

// productSortableFields maps API field names to database column names
var productSortableFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"model":       "model",
	"releaseDate": "release_date",
}

// ProductRepository handles product data access operations
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product in the database
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update updates an existing product in the database
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product. Network associations in the join table are
// removed with it.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM network_products WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
}

// List returns a paginated list of products with filter and sort options
func (r *ProductRepository) List(ctx context.Context, page, pageSize int, filters *ProductFilters, sort SortConfig) ([]domain.Product, int64, error) {
	var products []domain.Product
	var total int64

	page, pageSize = normalizePagination(page, pageSize, ProductDefaultPageSize, ProductMaxPageSize)

	query := r.db.WithContext(ctx).Model(&domain.Product{})

	if filters != nil {
		if filters.Search != "" {
			pattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(model) LIKE ?", pattern, pattern)
		}
		if filters.Name != "" {
			query = query.Where("LOWER(name) = LOWER(?)", filters.Name)
		}
		if filters.Model != "" {
			query = query.Where("LOWER(model) = LOWER(?)", filters.Model)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, productSortableFields, "created_at")

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(orderClause).Find(&products).Error

	return products, total, err
}

// ListByIDs returns the products matching the given ids
func (r *ProductRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}
