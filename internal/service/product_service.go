package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/electrade/network-api/internal/authz"
	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/mapper"
	"github.com/electrade/network-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrReleaseDateInFuture is returned when a product release date lies ahead of today
var ErrReleaseDateInFuture = errors.New("release date cannot be in the future")

// ProductService handles business logic for products
type ProductService struct {
	productRepo *repository.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new product service instance
func NewProductService(productRepo *repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	if err := authorize(ctx, authz.ActionProductCreate, authz.Target{}); err != nil {
		return nil, err
	}

	releaseDate, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        req.Name,
		Model:       req.Model,
		ReleaseDate: releaseDate,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	dto := mapper.ProductToDTO(product)
	return &dto, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	if err := authorize(ctx, authz.ActionProductRetrieve, authz.Target{}); err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ProductToDTO(product)
	return &dto, nil
}

// List returns a paginated list of products
func (s *ProductService) List(ctx context.Context, page, pageSize int, filters *repository.ProductFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if err := authorize(ctx, authz.ActionProductList, authz.Target{}); err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repository.ProductDefaultPageSize
	}
	if pageSize > repository.ProductMaxPageSize {
		pageSize = repository.ProductMaxPageSize
	}
	return paginated(mapper.ProductsToDTOs(products), total, page, pageSize), nil
}

// Update updates an existing product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	if err := authorize(ctx, authz.ActionProductUpdate, authz.Target{}); err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	releaseDate, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Model = req.Model
	product.ReleaseDate = releaseDate

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	dto := mapper.ProductToDTO(product)
	return &dto, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := authorize(ctx, authz.ActionProductDelete, authz.Target{}); err != nil {
		return err
	}

	if _, err := s.loadProduct(ctx, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) loadProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// parseReleaseDate parses an optional YYYY-MM-DD date and rejects
// dates after today.
func parseReleaseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: releaseDate must be YYYY-MM-DD", ErrInvalidInput)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return nil, ErrReleaseDateInFuture
	}
	return &date, nil
}
