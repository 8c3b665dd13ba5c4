package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/electrade/network-api/internal/authz"
	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Bounds for the scheduled debt adjustments.
const (
	increaseMin = 5
	increaseMax = 500

	decreaseMin = 100
	decreaseMax = 10000
)

// RandFunc draws a uniform random integer in [min, max].
type RandFunc func(min, max int64) int64

func defaultRand(min, max int64) int64 {
	return min + rand.Int64N(max-min+1)
}

// DebtService runs the bulk debt adjustments: the scheduled increase
// and decrease sweeps, and the superuser-triggered bulk clear with its
// sync/async split.
type DebtService struct {
	networkRepo    *repository.NetworkRepository
	submitter      Submitter
	asyncThreshold int
	randInt        RandFunc
	logger         *zap.Logger
}

// NewDebtService creates a new debt service instance. A nil randFn
// selects the default random source.
func NewDebtService(
	networkRepo *repository.NetworkRepository,
	submitter Submitter,
	asyncThreshold int,
	randFn RandFunc,
	logger *zap.Logger,
) *DebtService {
	if randFn == nil {
		randFn = defaultRand
	}
	return &DebtService{
		networkRepo:    networkRepo,
		submitter:      submitter,
		asyncThreshold: asyncThreshold,
		randInt:        randFn,
		logger:         logger,
	}
}

// IncreaseAll adds one random amount in [5, 500] to every network's
// debt. The whole sweep is a single relative update.
func (s *DebtService) IncreaseAll(ctx context.Context) (*domain.DebtRunResult, error) {
	amount := s.randInt(increaseMin, increaseMax)

	updated, err := s.networkRepo.IncreaseDebtAll(ctx, decimal.NewFromInt(amount))
	if err != nil {
		return nil, fmt.Errorf("failed to increase debt: %w", err)
	}

	s.logger.Info("debt increase sweep completed",
		zap.Int64("amount", amount),
		zap.Int64("updated", updated),
	)
	return &domain.DebtRunResult{Amount: amount, Updated: updated}, nil
}

// DecreaseAll subtracts one random amount in [100, 10000] from every
// network whose debt covers it. Debt never goes negative; networks
// below the amount are left untouched.
func (s *DebtService) DecreaseAll(ctx context.Context) (*domain.DebtRunResult, error) {
	amount := s.randInt(decreaseMin, decreaseMax)

	updated, err := s.networkRepo.DecreaseDebtCovered(ctx, decimal.NewFromInt(amount))
	if err != nil {
		return nil, fmt.Errorf("failed to decrease debt: %w", err)
	}

	s.logger.Info("debt decrease sweep completed",
		zap.Int64("amount", amount),
		zap.Int64("updated", updated),
	)
	return &domain.DebtRunResult{Amount: amount, Updated: updated}, nil
}

// ClearDebt zeroes the debt of the selected networks. Small selections
// run inline in one transaction; selections above the configured
// threshold are handed to the task executor and the caller gets the
// task id instead of a count.
func (s *DebtService) ClearDebt(ctx context.Context, req *domain.ClearDebtRequest) (*domain.ClearDebtResult, error) {
	if err := authorize(ctx, authz.ActionNetworkClearDebt, authz.Target{}); err != nil {
		return nil, err
	}
	if len(req.NetworkIDs) == 0 {
		return nil, fmt.Errorf("%w: no networks selected", ErrInvalidInput)
	}

	ids := dedupeIDs(req.NetworkIDs)

	if len(ids) <= s.asyncThreshold {
		count, err := s.ClearDebtNow(ctx, ids)
		if err != nil {
			return nil, err
		}
		return &domain.ClearDebtResult{
			Status: domain.ClearDebtCompleted,
			Count:  count,
		}, nil
	}

	taskID, err := s.submitter.Enqueue(ctx, TaskClearDebt, ClearDebtTaskPayload{NetworkIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule debt clear: %w", err)
	}

	s.logger.Info("debt clear scheduled",
		zap.Int("networks", len(ids)),
		zap.String("task_id", taskID),
	)
	return &domain.ClearDebtResult{
		Status: domain.ClearDebtScheduled,
		TaskID: taskID,
	}, nil
}

// ClearDebtNow zeroes the selected networks in one transaction and
// returns how many rows actually changed. Also the entry point for the
// background task.
func (s *DebtService) ClearDebtNow(ctx context.Context, ids []uuid.UUID) (int64, error) {
	count, err := s.networkRepo.ClearDebtByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to clear debt: %w", err)
	}
	s.logger.Info("debt cleared",
		zap.Int("selected", len(ids)),
		zap.Int64("updated", count),
	)
	return count, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
