package service_test

import (
	"context"
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

const clearDebtThreshold = 20

// fixedRand pins the adjustment amount so sweeps are deterministic
func fixedRand(amount int64) service.RandFunc {
	return func(_, _ int64) int64 { return amount }
}

func createDebtService(db *gorm.DB, submitter *fakeSubmitter, randFn service.RandFunc) *service.DebtService {
	return service.NewDebtService(
		repository.NewNetworkRepository(db),
		submitter,
		clearDebtThreshold,
		randFn,
		zap.NewNop(),
	)
}

func networkDebt(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	var network domain.Network
	require.NoError(t, db.First(&network, "id = ?", id).Error)
	return network.Debt
}

func TestDebtService_IncreaseAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDebtService(db, &fakeSubmitter{}, fixedRand(150))

	a := testutil.CreateTestNetwork(t, db, "A", domain.NetworkTypeFactory, 0)
	b := testutil.CreateTestNetwork(t, db, "B", domain.NetworkTypeDistributor, 1)
	testutil.SetNetworkDebt(t, db, b.ID, 1000)

	result, err := svc.IncreaseAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150), result.Amount)
	assert.Equal(t, int64(2), result.Updated)

	// One amount for the whole sweep, applied to every network
	assert.True(t, networkDebt(t, db, a.ID).Equal(decimal.NewFromInt(150)))
	assert.True(t, networkDebt(t, db, b.ID).Equal(decimal.NewFromInt(1150)))
}

func TestDebtService_DecreaseAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDebtService(db, &fakeSubmitter{}, fixedRand(500))

	rich := testutil.CreateTestNetwork(t, db, "Rich", domain.NetworkTypeDistributor, 1)
	testutil.SetNetworkDebt(t, db, rich.ID, 2000)
	exact := testutil.CreateTestNetwork(t, db, "Exact", domain.NetworkTypeDistributor, 1)
	testutil.SetNetworkDebt(t, db, exact.ID, 500)
	poor := testutil.CreateTestNetwork(t, db, "Poor", domain.NetworkTypeDistributor, 1)
	testutil.SetNetworkDebt(t, db, poor.ID, 499)

	result, err := svc.DecreaseAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Amount)
	assert.Equal(t, int64(2), result.Updated)

	assert.True(t, networkDebt(t, db, rich.ID).Equal(decimal.NewFromInt(1500)))
	// Debt equal to the amount drops to exactly zero
	assert.True(t, networkDebt(t, db, exact.ID).IsZero())
	// Debt below the amount is left untouched, never negative
	assert.True(t, networkDebt(t, db, poor.ID).Equal(decimal.NewFromInt(499)))
}

func TestDebtService_ClearDebt_Sync(t *testing.T) {
	db := testutil.SetupTestDB(t)
	submitter := &fakeSubmitter{}
	svc := createDebtService(db, submitter, nil)
	ctx := testutil.SuperUserContext(t, db)

	indebted := testutil.CreateTestNetwork(t, db, "Indebted", domain.NetworkTypeDistributor, 1)
	testutil.SetNetworkDebt(t, db, indebted.ID, 800)
	clean := testutil.CreateTestNetwork(t, db, "Clean", domain.NetworkTypeDistributor, 1)

	result, err := svc.ClearDebt(ctx, &domain.ClearDebtRequest{
		NetworkIDs: []uuid.UUID{indebted.ID, clean.ID, indebted.ID}, // duplicate on purpose
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ClearDebtCompleted, result.Status)
	// Only the row that actually changed is counted
	assert.Equal(t, int64(1), result.Count)
	assert.Empty(t, result.TaskID)
	assert.Empty(t, submitter.names, "small selections must not hit the queue")

	assert.True(t, networkDebt(t, db, indebted.ID).IsZero())
}

func TestDebtService_ClearDebt_Async(t *testing.T) {
	db := testutil.SetupTestDB(t)
	submitter := &fakeSubmitter{}
	svc := createDebtService(db, submitter, nil)
	ctx := testutil.SuperUserContext(t, db)

	ids := make([]uuid.UUID, 0, clearDebtThreshold+1)
	for i := 0; i < clearDebtThreshold+1; i++ {
		n := testutil.CreateTestNetwork(t, db, "Bulk", domain.NetworkTypeDistributor, 1)
		testutil.SetNetworkDebt(t, db, n.ID, 100)
		ids = append(ids, n.ID)
	}

	result, err := svc.ClearDebt(ctx, &domain.ClearDebtRequest{NetworkIDs: ids})
	require.NoError(t, err)

	assert.Equal(t, domain.ClearDebtScheduled, result.Status)
	assert.NotEmpty(t, result.TaskID)
	assert.Zero(t, result.Count)

	require.Len(t, submitter.names, 1)
	assert.Equal(t, service.TaskClearDebt, submitter.names[0])
	payload, ok := submitter.payloads[0].(service.ClearDebtTaskPayload)
	require.True(t, ok)
	assert.Equal(t, ids, payload.NetworkIDs)

	// The scheduled path must not touch the rows itself
	assert.True(t, networkDebt(t, db, ids[0]).Equal(decimal.NewFromInt(100)))

	// The worker entry point performs the actual clear
	count, err := svc.ClearDebtNow(context.Background(), payload.NetworkIDs)
	require.NoError(t, err)
	assert.Equal(t, int64(clearDebtThreshold+1), count)
	assert.True(t, networkDebt(t, db, ids[0]).IsZero())
}

func TestDebtService_ClearDebt_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDebtService(db, &fakeSubmitter{}, nil)

	t.Run("empty selection is rejected", func(t *testing.T) {
		ctx := testutil.SuperUserContext(t, db)
		_, err := svc.ClearDebt(ctx, &domain.ClearDebtRequest{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("non-superuser is denied", func(t *testing.T) {
		employee := testutil.CreateTestUser(t, db, "worker@example.com")
		_, err := svc.ClearDebt(testutil.AuthContext(employee), &domain.ClearDebtRequest{
			NetworkIDs: []uuid.UUID{uuid.New()},
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}
