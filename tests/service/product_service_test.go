package service_test

import (
	"testing"
	"time"

	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/electrade/network-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createProductService(db *gorm.DB) *service.ProductService {
	return service.NewProductService(repository.NewProductRepository(db), zap.NewNop())
}

func TestProductService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProductService(db)
	employee := testutil.CreateTestUser(t, db, "maker@example.com")
	ctx := testutil.AuthContext(employee)

	t.Run("create with release date", func(t *testing.T) {
		product, err := svc.Create(ctx, &domain.CreateProductRequest{
			Name:        "Widget",
			Model:       "W-100",
			ReleaseDate: "2023-06-01",
		})
		require.NoError(t, err)
		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, "2023-06-01", product.ReleaseDate)
	})

	t.Run("create without release date", func(t *testing.T) {
		product, err := svc.Create(ctx, &domain.CreateProductRequest{
			Name:  "Gadget",
			Model: "G-1",
		})
		require.NoError(t, err)
		assert.Empty(t, product.ReleaseDate)
	})

	t.Run("future release date is rejected", func(t *testing.T) {
		future := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
		_, err := svc.Create(ctx, &domain.CreateProductRequest{
			Name:        "Vaporware",
			Model:       "V-1",
			ReleaseDate: future,
		})
		assert.ErrorIs(t, err, service.ErrReleaseDateInFuture)
	})

	t.Run("malformed release date is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateProductRequest{
			Name:        "Broken",
			Model:       "B-1",
			ReleaseDate: "01.06.2023",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("inactive account is denied", func(t *testing.T) {
		inactive := &domain.User{ID: uuid.New(), IsActive: false}
		_, err := svc.Create(testutil.AuthContext(inactive), &domain.CreateProductRequest{
			Name:  "Denied",
			Model: "D-1",
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestProductService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProductService(db)
	employee := testutil.CreateTestUser(t, db, "editor@example.com")
	ctx := testutil.AuthContext(employee)

	created, err := svc.Create(ctx, &domain.CreateProductRequest{Name: "Widget", Model: "W-100"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &domain.UpdateProductRequest{
		Name:        "Widget Pro",
		Model:       "W-200",
		ReleaseDate: "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Equal(t, "W-200", updated.Model)
	assert.Equal(t, "2024-01-15", updated.ReleaseDate)

	_, err = svc.Update(ctx, uuid.New(), &domain.UpdateProductRequest{Name: "X", Model: "X"})
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProductService(db)
	ctx := testutil.SuperUserContext(t, db)

	product := testutil.CreateTestProduct(t, db, "Widget", "W-100")

	t.Run("regular employee cannot delete", func(t *testing.T) {
		employee := testutil.CreateTestUser(t, db, "deleter@example.com")
		err := svc.Delete(testutil.AuthContext(employee), product.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("superuser deletes", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, product.ID))
		_, err := svc.GetByID(ctx, product.ID)
		assert.ErrorIs(t, err, service.ErrProductNotFound)
	})
}

func TestProductService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProductService(db)
	employee := testutil.CreateTestUser(t, db, "browser@example.com")
	ctx := testutil.AuthContext(employee)

	testutil.CreateTestProduct(t, db, "Steel Beam", "SB-1")
	testutil.CreateTestProduct(t, db, "Steel Plate", "SP-2")
	testutil.CreateTestProduct(t, db, "Glass Panel", "GP-3")

	t.Run("list all", func(t *testing.T) {
		result, err := svc.List(ctx, 1, 10, nil, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
	})

	t.Run("search narrows the listing", func(t *testing.T) {
		result, err := svc.List(ctx, 1, 10, &repository.ProductFilters{Search: "Steel"}, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})
}
