package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NetworkType classifies a node in the trade hierarchy.
type NetworkType string

const (
	NetworkTypeFactory               NetworkType = "Factory"
	NetworkTypeDistributor           NetworkType = "Distributor"
	NetworkTypeDealerCenter          NetworkType = "DealerCenter"
	NetworkTypeRetailNetwork         NetworkType = "RetailNetwork"
	NetworkTypeIndividualBusinessman NetworkType = "IndividualBusinessman"
)

// IsValid checks if the NetworkType is a valid enum value
func (nt NetworkType) IsValid() bool {
	switch nt {
	case NetworkTypeFactory, NetworkTypeDistributor, NetworkTypeDealerCenter,
		NetworkTypeRetailNetwork, NetworkTypeIndividualBusinessman:
		return true
	}
	return false
}

// Network represents a node in the supply-chain hierarchy: a factory,
// distributor, dealer center, retail network, or individual businessman.
// NetworkLevel and Debt are system-managed; clients never write them
// after creation.
type Network struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	NetworkType  NetworkType     `gorm:"type:varchar(35);not null;index"`
	NetworkLevel int             `gorm:"not null;default:0;index"`
	Name         string          `gorm:"type:varchar(50);not null;index"`
	Email        string          `gorm:"type:varchar(255);not null"`
	Country      string          `gorm:"type:varchar(40);not null;index"`
	City         string          `gorm:"type:varchar(40);not null"`
	Street       string          `gorm:"type:varchar(80);not null"`
	HouseNumber  string          `gorm:"type:varchar(20);not null"`
	Debt         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	SupplierID   *uuid.UUID      `gorm:"type:uuid;column:supplier_id;index"`
	Supplier     *Network        `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
	Products     []Product       `gorm:"many2many:network_products"`
	Employees    []User          `gorm:"many2many:network_employees"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the database default is unavailable
func (n *Network) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// HasEmployee reports whether the given user is listed among the
// network's employees. Employees must be preloaded.
func (n *Network) HasEmployee(userID uuid.UUID) bool {
	for _, e := range n.Employees {
		if e.ID == userID {
			return true
		}
	}
	return false
}

// Product represents a product offered by one or more networks.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name        string     `gorm:"type:varchar(25);not null;index"`
	Model       string     `gorm:"type:varchar(25);not null"`
	ReleaseDate *time.Time `gorm:"type:date;column:release_date"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the database default is unavailable
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// User represents an account. Email is the login identifier; the role
// flags drive the permission engine.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   string    `gorm:"type:varchar(128);not null;column:password_hash" json:"-"`
	FirstName      string    `gorm:"type:varchar(30);not null;column:first_name"`
	LastName       string    `gorm:"type:varchar(30);not null;column:last_name"`
	PatronymicName string    `gorm:"type:varchar(30);column:patronymic_name"`
	Country        string    `gorm:"type:varchar(40)"`
	Phone          string    `gorm:"type:varchar(20)"`
	AvatarURL      string    `gorm:"type:varchar(500);column:avatar_url"`
	IsActive       bool      `gorm:"not null;default:true;column:is_active"`
	IsSuperUser    bool      `gorm:"not null;default:false;column:is_superuser"`
	IsStaff        bool      `gorm:"not null;default:false;column:is_staff"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the database default is unavailable
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the user's full name
func (u *User) FullName() string {
	if u.PatronymicName != "" {
		return u.FirstName + " " + u.PatronymicName + " " + u.LastName
	}
	return u.FirstName + " " + u.LastName
}
