package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/authz"
	"github.com/electrade/network-api/internal/contact"
	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/mail"
	"github.com/electrade/network-api/internal/mapper"
	"github.com/electrade/network-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NetworkService handles business logic for trade networks
type NetworkService struct {
	networkRepo *repository.NetworkRepository
	productRepo *repository.ProductRepository
	userRepo    *repository.UserRepository
	submitter   Submitter
	mailer      mail.Mailer
	logger      *zap.Logger
}

// NewNetworkService creates a new network service instance
func NewNetworkService(
	networkRepo *repository.NetworkRepository,
	productRepo *repository.ProductRepository,
	userRepo *repository.UserRepository,
	submitter Submitter,
	mailer mail.Mailer,
	logger *zap.Logger,
) *NetworkService {
	return &NetworkService{
		networkRepo: networkRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		submitter:   submitter,
		mailer:      mailer,
		logger:      logger,
	}
}

// Create creates a new network node, validating its place in the
// hierarchy and deriving its level.
func (s *NetworkService) Create(ctx context.Context, req *domain.CreateNetworkRequest) (*domain.NetworkDTO, error) {
	if err := authorize(ctx, authz.ActionNetworkCreate, authz.Target{}); err != nil {
		return nil, err
	}

	supplier, err := s.resolveSupplier(ctx, req.SupplierID, nil)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateHierarchy(req.NetworkType, supplier); err != nil {
		return nil, err
	}

	debt := decimal.Zero
	if req.NetworkType != domain.NetworkTypeFactory && req.Debt != nil {
		if req.Debt.IsNegative() {
			return nil, fmt.Errorf("%w: debt cannot be negative", ErrInvalidInput)
		}
		debt = *req.Debt
	}

	products, err := s.resolveProducts(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	employees, err := s.resolveEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, err
	}

	network := &domain.Network{
		NetworkType:  req.NetworkType,
		NetworkLevel: domain.AssignLevel(req.NetworkType, supplier),
		Name:         req.Name,
		Email:        req.Email,
		Country:      req.Country,
		City:         req.City,
		Street:       req.Street,
		HouseNumber:  req.HouseNumber,
		Debt:         debt,
		Products:     products,
		Employees:    employees,
	}
	if supplier != nil {
		network.SupplierID = &supplier.ID
	}

	if err := s.networkRepo.Create(ctx, network); err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}

	s.logger.Info("network created",
		zap.String("network_id", network.ID.String()),
		zap.String("network_type", string(network.NetworkType)),
		zap.Int("network_level", network.NetworkLevel),
	)

	created, err := s.networkRepo.GetByID(ctx, network.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload network: %w", err)
	}

	dto := mapper.NetworkToDTO(created)
	return &dto, nil
}

// GetByID retrieves a network by ID
func (s *NetworkService) GetByID(ctx context.Context, id uuid.UUID) (*domain.NetworkDTO, error) {
	network, err := s.loadNetwork(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, authz.ActionNetworkRetrieve, authz.Target{Network: network}); err != nil {
		return nil, err
	}

	dto := mapper.NetworkToDTO(network)
	return &dto, nil
}

// List returns a paginated listing of networks. Filters cover country
// exact-match, carried product, and debt above the table-wide mean.
// The unfiltered admin listing is restricted to superusers; the
// product and debt-above-average views are open to any active employee.
func (s *NetworkService) List(ctx context.Context, page, pageSize int, filters *repository.NetworkFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	action := authz.ActionNetworkList
	if filters != nil && (filters.ProductID != nil || filters.DebtAboveAverage) {
		action = authz.ActionNetworkListFiltered
	}
	if err := authorize(ctx, action, authz.Target{}); err != nil {
		return nil, err
	}

	networks, total, err := s.networkRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}

	page, pageSize = normalizeNetworkPage(page, pageSize)
	return paginated(mapper.NetworksToDTOs(networks), total, page, pageSize), nil
}

// Update applies a full update to the network. Debt and level are
// system-managed and cannot be changed here; the hierarchy rules are
// re-checked against the new type and supplier, but the level assigned
// at creation is kept.
func (s *NetworkService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateNetworkRequest) (*domain.NetworkDTO, error) {
	network, err := s.loadNetwork(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, authz.ActionNetworkUpdate, authz.Target{Network: network}); err != nil {
		return nil, err
	}

	supplier, err := s.resolveSupplier(ctx, req.SupplierID, &id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateHierarchy(req.NetworkType, supplier); err != nil {
		return nil, err
	}

	network.NetworkType = req.NetworkType
	network.Name = req.Name
	network.Email = req.Email
	network.Country = req.Country
	network.City = req.City
	network.Street = req.Street
	network.HouseNumber = req.HouseNumber
	if supplier != nil {
		network.SupplierID = &supplier.ID
	} else {
		network.SupplierID = nil
	}

	if err := s.networkRepo.Update(ctx, network); err != nil {
		return nil, fmt.Errorf("failed to update network: %w", err)
	}

	if req.ProductIDs != nil {
		products, err := s.resolveProducts(ctx, *req.ProductIDs)
		if err != nil {
			return nil, err
		}
		if err := s.networkRepo.ReplaceProducts(ctx, network, products); err != nil {
			return nil, fmt.Errorf("failed to update network products: %w", err)
		}
	}
	if req.EmployeeIDs != nil {
		employees, err := s.resolveEmployees(ctx, *req.EmployeeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.networkRepo.ReplaceEmployees(ctx, network, employees); err != nil {
			return nil, fmt.Errorf("failed to update network employees: %w", err)
		}
	}

	updated, err := s.networkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload network: %w", err)
	}

	dto := mapper.NetworkToDTO(updated)
	return &dto, nil
}

// Delete removes a network. Dependents that named it as supplier keep
// their level and lose the reference.
func (s *NetworkService) Delete(ctx context.Context, id uuid.UUID) error {
	network, err := s.loadNetwork(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, authz.ActionNetworkDelete, authz.Target{Network: network}); err != nil {
		return err
	}

	if err := s.networkRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete network: %w", err)
	}

	s.logger.Info("network deleted", zap.String("network_id", id.String()))
	return nil
}

// SendContactCode authorizes the request, then schedules delivery of
// the network's contact QR code to the requesting employee's email.
// Delivery happens in the background; the response does not await it.
func (s *NetworkService) SendContactCode(ctx context.Context, id uuid.UUID) (*domain.ContactCodeResponse, error) {
	network, err := s.loadNetwork(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, authz.ActionNetworkContactCode, authz.Target{Network: network}); err != nil {
		return nil, err
	}

	actor := auth.UserFromContext(ctx)
	payload := SendContactCodeTaskPayload{
		NetworkID: network.ID,
		Recipient: actor.Email,
	}
	taskID, err := s.submitter.Enqueue(ctx, TaskSendContactCode, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule contact code delivery: %w", err)
	}

	s.logger.Info("contact code delivery scheduled",
		zap.String("network_id", network.ID.String()),
		zap.String("recipient", actor.Email),
		zap.String("task_id", taskID),
	)

	return &domain.ContactCodeResponse{
		Message: "contact QR code will be sent to your email",
	}, nil
}

// DeliverContactCode renders the network's contact QR and mails it.
// Called by the background worker; authorization already happened when
// the task was submitted.
func (s *NetworkService) DeliverContactCode(ctx context.Context, networkID uuid.UUID, recipient string) error {
	network, err := s.loadNetwork(ctx, networkID)
	if err != nil {
		return err
	}

	png, err := contact.RenderQR(network)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Contact details for %s", network.Name)
	body := fmt.Sprintf("Attached is a QR code with the contact details of %s. Scan it to save the contact.", network.Name)
	attachments := map[string][]byte{"contact.png": png}

	if err := s.mailer.Send(recipient, subject, body, attachments); err != nil {
		return fmt.Errorf("failed to send contact code: %w", err)
	}

	s.logger.Info("contact code delivered",
		zap.String("network_id", networkID.String()),
		zap.String("recipient", recipient),
	)
	return nil
}

func (s *NetworkService) loadNetwork(ctx context.Context, id uuid.UUID) (*domain.Network, error) {
	network, err := s.networkRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNetworkNotFound
		}
		return nil, fmt.Errorf("failed to get network: %w", err)
	}
	return network, nil
}

// resolveSupplier loads the referenced supplier network, rejecting a
// self-reference when updating.
func (s *NetworkService) resolveSupplier(ctx context.Context, supplierID *uuid.UUID, selfID *uuid.UUID) (*domain.Network, error) {
	if supplierID == nil {
		return nil, nil
	}
	if selfID != nil && *supplierID == *selfID {
		return nil, fmt.Errorf("%w: a network cannot be its own supplier", ErrInvalidInput)
	}
	supplier, err := s.networkRepo.GetByID(ctx, *supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNetworkNotFound
		}
		return nil, fmt.Errorf("failed to get supplier network: %w", err)
	}
	return supplier, nil
}

func (s *NetworkService) resolveProducts(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	products, err := s.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	if len(products) != len(ids) {
		return nil, ErrProductNotFound
	}
	return products, nil
}

func (s *NetworkService) resolveEmployees(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employees: %w", err)
	}
	if len(users) != len(ids) {
		return nil, ErrUserNotFound
	}
	return users, nil
}

func normalizeNetworkPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repository.NetworkDefaultPageSize
	}
	if pageSize > repository.NetworkMaxPageSize {
		pageSize = repository.NetworkMaxPageSize
	}
	return page, pageSize
}

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
