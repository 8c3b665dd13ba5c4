// Package mapper converts persistence entities to API DTOs.
package mapper

import (
	"time"

	"github.com/electrade/network-api/internal/domain"
	"github.com/google/uuid"
)

// NetworkToDTO converts a Network entity to its DTO
func NetworkToDTO(n *domain.Network) domain.NetworkDTO {
	dto := domain.NetworkDTO{
		ID:           n.ID,
		NetworkType:  n.NetworkType,
		NetworkLevel: n.NetworkLevel,
		Name:         n.Name,
		Email:        n.Email,
		Country:      n.Country,
		City:         n.City,
		Street:       n.Street,
		HouseNumber:  n.HouseNumber,
		Debt:         n.Debt,
		SupplierID:   n.SupplierID,
		ProductIDs:   make([]uuid.UUID, 0, len(n.Products)),
		EmployeeIDs:  make([]uuid.UUID, 0, len(n.Employees)),
		CreatedAt:    n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.Supplier != nil {
		dto.SupplierName = n.Supplier.Name
	}
	for _, p := range n.Products {
		dto.ProductIDs = append(dto.ProductIDs, p.ID)
	}
	for _, e := range n.Employees {
		dto.EmployeeIDs = append(dto.EmployeeIDs, e.ID)
	}
	return dto
}

// NetworksToDTOs converts a slice of networks
func NetworksToDTOs(networks []domain.Network) []domain.NetworkDTO {
	dtos := make([]domain.NetworkDTO, len(networks))
	for i := range networks {
		dtos[i] = NetworkToDTO(&networks[i])
	}
	return dtos
}

// ProductToDTO converts a Product entity to its DTO
func ProductToDTO(p *domain.Product) domain.ProductDTO {
	dto := domain.ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Model:     p.Model,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.ReleaseDate != nil {
		dto.ReleaseDate = p.ReleaseDate.Format("2006-01-02")
	}
	return dto
}

// ProductsToDTOs converts a slice of products
func ProductsToDTOs(products []domain.Product) []domain.ProductDTO {
	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = ProductToDTO(&products[i])
	}
	return dtos
}

// UserToDTO converts a User entity to its DTO
func UserToDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PatronymicName: u.PatronymicName,
		Country:        u.Country,
		Phone:          u.Phone,
		AvatarURL:      u.AvatarURL,
		IsActive:       u.IsActive,
		IsSuperUser:    u.IsSuperUser,
		IsStaff:        u.IsStaff,
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// UsersToDTOs converts a slice of users
func UsersToDTOs(users []domain.User) []domain.UserDTO {
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = UserToDTO(&users[i])
	}
	return dtos
}
