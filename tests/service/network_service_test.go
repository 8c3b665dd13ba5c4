package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/electrade/network-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeSubmitter records enqueued tasks instead of touching redis
type fakeSubmitter struct {
	names    []string
	payloads []interface{}
	taskID   string
}

func (f *fakeSubmitter) Enqueue(_ context.Context, name string, payload interface{}) (string, error) {
	f.names = append(f.names, name)
	f.payloads = append(f.payloads, payload)
	if f.taskID == "" {
		f.taskID = uuid.NewString()
	}
	return f.taskID, nil
}

// fakeMailer captures outgoing mail
type fakeMailer struct {
	to          []string
	subjects    []string
	attachments []map[string][]byte
}

func (f *fakeMailer) Send(to, subject, _ string, attachments map[string][]byte) error {
	f.to = append(f.to, to)
	f.subjects = append(f.subjects, subject)
	f.attachments = append(f.attachments, attachments)
	return nil
}

func createNetworkService(db *gorm.DB) (*service.NetworkService, *fakeSubmitter, *fakeMailer) {
	submitter := &fakeSubmitter{}
	mailer := &fakeMailer{}
	svc := service.NewNetworkService(
		repository.NewNetworkRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
		submitter,
		mailer,
		zap.NewNop(),
	)
	return svc, submitter, mailer
}

func validNetworkRequest(networkType domain.NetworkType) *domain.CreateNetworkRequest {
	return &domain.CreateNetworkRequest{
		NetworkType: networkType,
		Name:        "Nordic Trade",
		Email:       "contact@nordictrade.example",
		Country:     "Norway",
		City:        "Oslo",
		Street:      "Main Street",
		HouseNumber: "12b",
	}
}

func TestNetworkService_Create_Factory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)
	ctx := testutil.SuperUserContext(t, db)

	t.Run("factory anchors at level zero with zero debt", func(t *testing.T) {
		req := validNetworkRequest(domain.NetworkTypeFactory)
		debt := decimal.NewFromInt(750)
		req.Debt = &debt // must be ignored for factories

		created, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 0, created.NetworkLevel)
		assert.True(t, created.Debt.IsZero())
	})

	t.Run("factory with supplier is rejected", func(t *testing.T) {
		supplier := testutil.CreateTestNetwork(t, db, "Supplier", domain.NetworkTypeFactory, 0)
		req := validNetworkRequest(domain.NetworkTypeFactory)
		req.SupplierID = &supplier.ID

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrSupplierNotAllowedForFactory)
	})
}

func TestNetworkService_Create_Levels(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)
	ctx := testutil.SuperUserContext(t, db)

	t.Run("level follows the supplier chain", func(t *testing.T) {
		factory, err := svc.Create(ctx, validNetworkRequest(domain.NetworkTypeFactory))
		require.NoError(t, err)

		distReq := validNetworkRequest(domain.NetworkTypeDistributor)
		distReq.SupplierID = &factory.ID
		dist, err := svc.Create(ctx, distReq)
		require.NoError(t, err)
		assert.Equal(t, 1, dist.NetworkLevel)

		dealerReq := validNetworkRequest(domain.NetworkTypeDealerCenter)
		dealerReq.SupplierID = &dist.ID
		dealer, err := svc.Create(ctx, dealerReq)
		require.NoError(t, err)
		assert.Equal(t, 2, dealer.NetworkLevel)
		assert.Equal(t, dist.ID, *dealer.SupplierID)
	})

	t.Run("non-factory without supplier starts at level one", func(t *testing.T) {
		created, err := svc.Create(ctx, validNetworkRequest(domain.NetworkTypeRetailNetwork))
		require.NoError(t, err)
		assert.Equal(t, 1, created.NetworkLevel)
	})

	t.Run("supplier at the depth limit is rejected", func(t *testing.T) {
		deep := testutil.CreateTestNetwork(t, db, "Deep", domain.NetworkTypeRetailNetwork, domain.MaxSupplierLevel)
		req := validNetworkRequest(domain.NetworkTypeIndividualBusinessman)
		req.SupplierID = &deep.ID

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, domain.ErrHierarchyDepthExceeded)
	})

	t.Run("unknown supplier is rejected", func(t *testing.T) {
		missing := uuid.New()
		req := validNetworkRequest(domain.NetworkTypeDistributor)
		req.SupplierID = &missing

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrSupplierNetworkNotFound)
	})

	t.Run("initial debt is accepted for non-factories", func(t *testing.T) {
		req := validNetworkRequest(domain.NetworkTypeDistributor)
		debt := decimal.NewFromInt(300)
		req.Debt = &debt

		created, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.True(t, created.Debt.Equal(debt))
	})

	t.Run("negative debt is rejected", func(t *testing.T) {
		req := validNetworkRequest(domain.NetworkTypeDistributor)
		debt := decimal.NewFromInt(-1)
		req.Debt = &debt

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestNetworkService_Create_Associations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)
	ctx := testutil.SuperUserContext(t, db)

	product := testutil.CreateTestProduct(t, db, "Widget", "W-100")
	employee := testutil.CreateTestUser(t, db, "employee@example.com")

	t.Run("products and employees are linked", func(t *testing.T) {
		req := validNetworkRequest(domain.NetworkTypeDistributor)
		req.ProductIDs = []uuid.UUID{product.ID}
		req.EmployeeIDs = []uuid.UUID{employee.ID}

		created, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{product.ID}, created.ProductIDs)
		assert.Equal(t, []uuid.UUID{employee.ID}, created.EmployeeIDs)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		req := validNetworkRequest(domain.NetworkTypeDistributor)
		req.ProductIDs = []uuid.UUID{uuid.New()}

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrProductNotFound)
	})
}

func TestNetworkService_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)

	employee := testutil.CreateTestUser(t, db, "member@example.com")
	network := testutil.CreateTestNetwork(t, db, "Member Net", domain.NetworkTypeDistributor, 1)
	require.NoError(t, db.Model(network).Association("Employees").Append(employee))

	t.Run("employee reads own network", func(t *testing.T) {
		got, err := svc.GetByID(testutil.AuthContext(employee), network.ID)
		require.NoError(t, err)
		assert.Equal(t, network.ID, got.ID)
	})

	t.Run("outsider is denied", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db, "outsider@example.com")
		_, err := svc.GetByID(testutil.AuthContext(outsider), network.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("missing network reports not found before permissions", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db, "outsider2@example.com")
		_, err := svc.GetByID(testutil.AuthContext(outsider), uuid.New())
		assert.ErrorIs(t, err, service.ErrNetworkNotFound)
	})
}

func TestNetworkService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)
	ctx := testutil.SuperUserContext(t, db)

	req := validNetworkRequest(domain.NetworkTypeDistributor)
	debt := decimal.NewFromInt(450)
	req.Debt = &debt
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)

	updateReq := &domain.UpdateNetworkRequest{
		NetworkType: domain.NetworkTypeDistributor,
		Name:        "Renamed Trade",
		Email:       "renamed@nordictrade.example",
		Country:     "Sweden",
		City:        "Stockholm",
		Street:      "Side Street",
		HouseNumber: "4",
	}

	t.Run("scalar fields change, debt and level survive", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, updateReq)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Trade", updated.Name)
		assert.Equal(t, "Sweden", updated.Country)
		assert.True(t, updated.Debt.Equal(debt), "debt must not change through update")
		assert.Equal(t, created.NetworkLevel, updated.NetworkLevel)
	})

	t.Run("self-supply is rejected", func(t *testing.T) {
		bad := *updateReq
		bad.SupplierID = &created.ID
		_, err := svc.Update(ctx, created.ID, &bad)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("level is kept even when the supplier changes", func(t *testing.T) {
		deepSupplier := testutil.CreateTestNetwork(t, db, "Deep Supplier", domain.NetworkTypeRetailNetwork, 2)
		moved := *updateReq
		moved.SupplierID = &deepSupplier.ID

		updated, err := svc.Update(ctx, created.ID, &moved)
		require.NoError(t, err)
		assert.Equal(t, deepSupplier.ID, *updated.SupplierID)
		assert.Equal(t, created.NetworkLevel, updated.NetworkLevel)
	})

	t.Run("hierarchy is still validated", func(t *testing.T) {
		tooDeep := testutil.CreateTestNetwork(t, db, "Too Deep", domain.NetworkTypeRetailNetwork, domain.MaxSupplierLevel)
		bad := *updateReq
		bad.SupplierID = &tooDeep.ID
		_, err := svc.Update(ctx, created.ID, &bad)
		assert.ErrorIs(t, err, domain.ErrHierarchyDepthExceeded)
	})

	t.Run("clearing the supplier removes the reference", func(t *testing.T) {
		cleared := *updateReq
		cleared.SupplierID = nil
		updated, err := svc.Update(ctx, created.ID, &cleared)
		require.NoError(t, err)
		assert.Nil(t, updated.SupplierID)
	})
}

func TestNetworkService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)
	ctx := testutil.SuperUserContext(t, db)

	network := testutil.CreateTestNetwork(t, db, "Doomed", domain.NetworkTypeDistributor, 1)

	require.NoError(t, svc.Delete(ctx, network.ID))

	_, err := svc.GetByID(ctx, network.ID)
	assert.ErrorIs(t, err, service.ErrNetworkNotFound)
}

func TestNetworkService_SendContactCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, submitter, _ := createNetworkService(db)

	employee := testutil.CreateTestUser(t, db, "courier@example.com")
	network := testutil.CreateTestNetwork(t, db, "QR Net", domain.NetworkTypeDistributor, 1)
	require.NoError(t, db.Model(network).Association("Employees").Append(employee))

	t.Run("employee request schedules delivery to own email", func(t *testing.T) {
		resp, err := svc.SendContactCode(testutil.AuthContext(employee), network.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Message)

		require.Len(t, submitter.names, 1)
		assert.Equal(t, service.TaskSendContactCode, submitter.names[0])

		payload, ok := submitter.payloads[0].(service.SendContactCodeTaskPayload)
		require.True(t, ok)
		assert.Equal(t, network.ID, payload.NetworkID)
		assert.Equal(t, employee.Email, payload.Recipient)
	})

	t.Run("non-employee is denied", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db, "stranger@example.com")
		_, err := svc.SendContactCode(testutil.AuthContext(outsider), network.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestNetworkService_DeliverContactCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, mailer := createNetworkService(db)

	network := testutil.CreateTestNetwork(t, db, "QR Net", domain.NetworkTypeDistributor, 1)

	err := svc.DeliverContactCode(context.Background(), network.ID, "courier@example.com")
	require.NoError(t, err)

	require.Len(t, mailer.to, 1)
	assert.Equal(t, "courier@example.com", mailer.to[0])
	assert.Contains(t, mailer.subjects[0], network.Name)

	png, ok := mailer.attachments[0]["contact.png"]
	require.True(t, ok)
	assert.NotEmpty(t, png)
}

func TestNetworkService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _, _ := createNetworkService(db)
	ctx := testutil.SuperUserContext(t, db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestNetwork(t, db, "Net", domain.NetworkTypeDistributor, 1)
	}

	t.Run("superuser lists networks", func(t *testing.T) {
		result, err := svc.List(ctx, 1, 10, nil, repository.DefaultSortConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)

		raw, err := json.Marshal(result.Data)
		require.NoError(t, err)
		var dtos []domain.NetworkDTO
		require.NoError(t, json.Unmarshal(raw, &dtos))
		assert.Len(t, dtos, 3)
	})

	t.Run("regular employee is denied", func(t *testing.T) {
		employee := testutil.CreateTestUser(t, db, "lister@example.com")
		_, err := svc.List(testutil.AuthContext(employee), 1, 10, nil, repository.DefaultSortConfig())
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("active employee may use the filtered views", func(t *testing.T) {
		employee := testutil.CreateTestUser(t, db, "analyst@example.com")
		ectx := testutil.AuthContext(employee)

		_, err := svc.List(ectx, 1, 10, &repository.NetworkFilters{DebtAboveAverage: true}, repository.DefaultSortConfig())
		require.NoError(t, err)

		product := testutil.CreateTestProduct(t, db, "Widget", "W-1")
		_, err = svc.List(ectx, 1, 10, &repository.NetworkFilters{ProductID: &product.ID}, repository.DefaultSortConfig())
		require.NoError(t, err)
	})

	t.Run("country filter alone stays superuser only", func(t *testing.T) {
		employee := testutil.CreateTestUser(t, db, "country@example.com")
		_, err := svc.List(testutil.AuthContext(employee), 1, 10, &repository.NetworkFilters{Country: "Norway"}, repository.DefaultSortConfig())
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}
