package repository

import (
	"context"

	"github.com/electrade/network-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NetworkFilters defines filter options for network listing
type NetworkFilters struct {
	Country string
	// ProductID narrows the listing to networks carrying the product
	ProductID *uuid.UUID
	// DebtAboveAverage keeps only networks whose debt exceeds the mean
	// debt across all networks, computed at query time
	DebtAboveAverage bool
}

// networkSortableFields maps API field names to database column names
// Only fields in this map can be used for sorting (whitelist approach)
var networkSortableFields = map[string]string{
	"createdAt":    "networks.created_at",
	"updatedAt":    "networks.updated_at",
	"name":         "networks.name",
	"country":      "networks.country",
	"city":         "networks.city",
	"networkType":  "networks.network_type",
	"networkLevel": "networks.network_level",
	"debt":         "networks.debt",
}

// NetworkRepository handles network data access operations
type NetworkRepository struct {
	db *gorm.DB
}

// NewNetworkRepository creates a new network repository instance
func NewNetworkRepository(db *gorm.DB) *NetworkRepository {
	return &NetworkRepository{db: db}
}

// Create creates a new network in the database
func (r *NetworkRepository) Create(ctx context.Context, network *domain.Network) error {
	return r.db.WithContext(ctx).Create(network).Error
}

// GetByID retrieves a network with its supplier, products and employees
func (r *NetworkRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Network, error) {
	var network domain.Network
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Products").
		Preload("Employees").
		Where("id = ?", id).
		First(&network).Error
	if err != nil {
		return nil, err
	}
	return &network, nil
}

// Update persists changes to an existing network
func (r *NetworkRepository) Update(ctx context.Context, network *domain.Network) error {
	return r.db.WithContext(ctx).Omit("Products", "Employees", "Supplier").Save(network).Error
}

// ReplaceProducts overwrites the network's product associations
func (r *NetworkRepository) ReplaceProducts(ctx context.Context, network *domain.Network, products []domain.Product) error {
	return r.db.WithContext(ctx).Model(network).Association("Products").Replace(products)
}

// ReplaceEmployees overwrites the network's employee associations
func (r *NetworkRepository) ReplaceEmployees(ctx context.Context, network *domain.Network, employees []domain.User) error {
	return r.db.WithContext(ctx).Model(network).Association("Employees").Replace(employees)
}

// Delete removes a network. Dependents referencing it as supplier keep
// their level; the foreign key clears their supplier_id.
func (r *NetworkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Products", "Employees").Delete(&domain.Network{ID: id}).Error
}

// List returns a paginated list of networks with filter and sort options
func (r *NetworkRepository) List(ctx context.Context, page, pageSize int, filters *NetworkFilters, sort SortConfig) ([]domain.Network, int64, error) {
	var networks []domain.Network
	var total int64

	page, pageSize = normalizePagination(page, pageSize, NetworkDefaultPageSize, NetworkMaxPageSize)

	query := r.db.WithContext(ctx).Model(&domain.Network{})

	if filters != nil {
		if filters.Country != "" {
			query = query.Where("LOWER(networks.country) = LOWER(?)", filters.Country)
		}
		if filters.ProductID != nil {
			query = query.
				Joins("JOIN network_products ON network_products.network_id = networks.id").
				Where("network_products.product_id = ?", *filters.ProductID)
		}
		if filters.DebtAboveAverage {
			// Mean over the whole table, not the filtered subset
			query = query.Where("networks.debt > (SELECT AVG(debt) FROM networks)")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, networkSortableFields, "networks.created_at")

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Preload("Products").
		Preload("Employees").
		Offset(offset).Limit(pageSize).Order(orderClause).
		Find(&networks).Error

	return networks, total, err
}

// ListByIDs returns the networks matching the given ids
func (r *NetworkRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Network, error) {
	var networks []domain.Network
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&networks).Error
	return networks, err
}

// HasDependents reports whether any network names the given one as supplier
func (r *NetworkRepository) HasDependents(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Network{}).
		Where("supplier_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// AverageDebt returns the mean debt across all networks
func (r *NetworkRepository) AverageDebt(ctx context.Context) (decimal.Decimal, error) {
	var avg decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&domain.Network{}).
		Select("AVG(debt)").
		Scan(&avg).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !avg.Valid {
		return decimal.Zero, nil
	}
	return avg.Decimal, nil
}

// IncreaseDebtAll adds the amount to every network's debt with one
// relative update and reports how many rows changed.
func (r *NetworkRepository) IncreaseDebtAll(ctx context.Context, amount decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&domain.Network{}).
		Update("debt", gorm.Expr("debt + ?", amount))
	return res.RowsAffected, res.Error
}

// DecreaseDebtCovered subtracts the amount from every network whose
// debt covers it. Rows below the amount are left untouched, so debt
// never goes negative.
func (r *NetworkRepository) DecreaseDebtCovered(ctx context.Context, amount decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Network{}).
		Where("debt >= ?", amount).
		Update("debt", gorm.Expr("debt - ?", amount))
	return res.RowsAffected, res.Error
}

// ClearDebtByIDs zeroes the debt of the selected networks in one
// transaction and reports how many rows changed.
func (r *NetworkRepository) ClearDebtByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Network{}).
			Where("id IN ?", ids).
			Where("debt <> ?", decimal.Zero).
			Update("debt", decimal.Zero)
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected
		return nil
	})
	return updated, err
}
