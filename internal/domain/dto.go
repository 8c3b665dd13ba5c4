package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for API responses

type NetworkDTO struct {
	ID           uuid.UUID       `json:"id"`
	NetworkType  NetworkType     `json:"networkType"`
	NetworkLevel int             `json:"networkLevel"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Country      string          `json:"country"`
	City         string          `json:"city"`
	Street       string          `json:"street"`
	HouseNumber  string          `json:"houseNumber"`
	Debt         decimal.Decimal `json:"debt"`
	SupplierID   *uuid.UUID      `json:"supplierId,omitempty"`
	SupplierName string          `json:"supplierName,omitempty"`
	ProductIDs   []uuid.UUID     `json:"productIds"`
	EmployeeIDs  []uuid.UUID     `json:"employeeIds"`
	CreatedAt    string          `json:"createdAt"` // ISO 8601
}

type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	ReleaseDate string    `json:"releaseDate,omitempty"` // YYYY-MM-DD
	CreatedAt   string    `json:"createdAt"`             // ISO 8601
}

type UserDTO struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	PatronymicName string    `json:"patronymicName,omitempty"`
	Country        string    `json:"country,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	IsActive       bool      `json:"isActive"`
	IsSuperUser    bool      `json:"isSuperUser"`
	IsStaff        bool      `json:"isStaff"`
	CreatedAt      string    `json:"createdAt"` // ISO 8601
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

// CreateNetworkRequest carries the client-settable fields at creation.
// Debt may be supplied here only; it is forced to zero for factories
// and becomes system-managed afterwards. NetworkLevel is never
// accepted from clients.
type CreateNetworkRequest struct {
	NetworkType NetworkType      `json:"networkType" validate:"required,oneof=Factory Distributor DealerCenter RetailNetwork IndividualBusinessman"`
	Name        string           `json:"name" validate:"required,max=50"`
	Email       string           `json:"email" validate:"required,email"`
	Country     string           `json:"country" validate:"required,max=40"`
	City        string           `json:"city" validate:"required,max=40"`
	Street      string           `json:"street" validate:"required,max=80"`
	HouseNumber string           `json:"houseNumber" validate:"required,max=20"`
	Debt        *decimal.Decimal `json:"debt,omitempty"`
	SupplierID  *uuid.UUID       `json:"supplierId,omitempty"`
	ProductIDs  []uuid.UUID      `json:"productIds,omitempty"`
	EmployeeIDs []uuid.UUID      `json:"employeeIds,omitempty"`
}

// UpdateNetworkRequest structurally excludes the protected fields:
// there is no debt and no level here, so a client-supplied value for
// either can never reach the update path.
type UpdateNetworkRequest struct {
	NetworkType NetworkType  `json:"networkType" validate:"required,oneof=Factory Distributor DealerCenter RetailNetwork IndividualBusinessman"`
	Name        string       `json:"name" validate:"required,max=50"`
	Email       string       `json:"email" validate:"required,email"`
	Country     string       `json:"country" validate:"required,max=40"`
	City        string       `json:"city" validate:"required,max=40"`
	Street      string       `json:"street" validate:"required,max=80"`
	HouseNumber string       `json:"houseNumber" validate:"required,max=20"`
	SupplierID  *uuid.UUID   `json:"supplierId,omitempty"`
	ProductIDs  *[]uuid.UUID `json:"productIds,omitempty"`
	EmployeeIDs *[]uuid.UUID `json:"employeeIds,omitempty"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,max=25"`
	Model       string `json:"model" validate:"required,max=25"`
	ReleaseDate string `json:"releaseDate,omitempty"` // YYYY-MM-DD
}

type UpdateProductRequest struct {
	Name        string `json:"name" validate:"required,max=25"`
	Model       string `json:"model" validate:"required,max=25"`
	ReleaseDate string `json:"releaseDate,omitempty"` // YYYY-MM-DD
}

type CreateUserRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	FirstName      string `json:"firstName" validate:"required,max=30"`
	LastName       string `json:"lastName" validate:"required,max=30"`
	PatronymicName string `json:"patronymicName,omitempty" validate:"max=30"`
	Country        string `json:"country,omitempty" validate:"max=40"`
	Phone          string `json:"phone,omitempty" validate:"max=20"`
	AvatarURL      string `json:"avatarUrl,omitempty" validate:"omitempty,url,max=500"`
}

type UpdateUserRequest struct {
	Password       string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	FirstName      string `json:"firstName" validate:"required,max=30"`
	LastName       string `json:"lastName" validate:"required,max=30"`
	PatronymicName string `json:"patronymicName,omitempty" validate:"max=30"`
	Country        string `json:"country,omitempty" validate:"max=40"`
	Phone          string `json:"phone,omitempty" validate:"max=20"`
	AvatarURL      string `json:"avatarUrl,omitempty" validate:"omitempty,url,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"` // ISO 8601
	User      UserDTO `json:"user"`
}

// ClearDebtRequest selects the networks whose debt should be zeroed.
type ClearDebtRequest struct {
	NetworkIDs []uuid.UUID `json:"networkIds" validate:"required,min=1,dive,required"`
}

// ClearDebtStatus tags how a bulk clear-debt request was executed.
type ClearDebtStatus string

const (
	ClearDebtCompleted ClearDebtStatus = "completed"
	ClearDebtScheduled ClearDebtStatus = "scheduled"
)

// ClearDebtResult is the tagged outcome of a bulk clear-debt call:
// either the update already happened (Completed carries the count) or
// it was handed to the task executor (Scheduled carries the task id).
type ClearDebtResult struct {
	Status ClearDebtStatus `json:"status"`
	Count  int64           `json:"count,omitempty"`
	TaskID string          `json:"taskId,omitempty"`
}

// DebtRunResult reports a scheduled debt adjustment run.
type DebtRunResult struct {
	Amount  int64 `json:"amount"`
	Updated int64 `json:"updated"`
}

// ContactCodeResponse acknowledges a QR contact-code request.
type ContactCodeResponse struct {
	Message string `json:"message"`
}
