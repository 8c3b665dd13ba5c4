package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/database"
	"github.com/electrade/network-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an isolated in-memory SQLite database and migrates
// the schema. Every call gets a fresh database, so tests never share
// state.
func SetupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A shared-cache in-memory database vanishes when its last
	// connection closes; keep exactly one open for the test's lifetime.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestUser inserts an active user account
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	user := &domain.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestSuperUser inserts an active superuser account
func CreateTestSuperUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	user := &domain.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		FirstName:    "Super",
		LastName:     "User",
		IsActive:     true,
		IsSuperUser:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestNetwork inserts a network node with the given type and level
func CreateTestNetwork(t *testing.T, db *gorm.DB, name string, networkType domain.NetworkType, level int) *domain.Network {
	network := &domain.Network{
		NetworkType:  networkType,
		NetworkLevel: level,
		Name:         name,
		Email:        "network@example.com",
		Country:      "Norway",
		City:         "Oslo",
		Street:       "Main Street",
		HouseNumber:  "1",
		Debt:         decimal.Zero,
	}
	require.NoError(t, db.Create(network).Error)
	return network
}

// SetNetworkDebt overwrites a network's debt directly
func SetNetworkDebt(t *testing.T, db *gorm.DB, id uuid.UUID, debt int64) {
	err := db.Model(&domain.Network{}).
		Where("id = ?", id).
		Update("debt", decimal.NewFromInt(debt)).Error
	require.NoError(t, err)
}

// CreateTestProduct inserts a product
func CreateTestProduct(t *testing.T, db *gorm.DB, name, model string) *domain.Product {
	product := &domain.Product{
		Name:  name,
		Model: model,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// AuthContext returns a context carrying the given user as the
// authenticated actor.
func AuthContext(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{User: user})
}

// SuperUserContext creates a superuser in the database and returns a
// context authenticated as that account.
func SuperUserContext(t *testing.T, db *gorm.DB) context.Context {
	user := CreateTestSuperUser(t, db, fmt.Sprintf("admin-%s@example.com", uuid.NewString()[:8]))
	return AuthContext(user)
}
