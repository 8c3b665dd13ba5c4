package jobs

import (
	"context"
	"time"

	"github.com/electrade/network-api/internal/domain"
	"go.uber.org/zap"
)

// Job names for the scheduled debt adjustments.
const (
	IncreaseDebtJobName = "increase_debt"
	DecreaseDebtJobName = "decrease_debt"
)

// DefaultJobTimeout bounds a single debt sweep
const DefaultJobTimeout = 10 * time.Minute

// DebtAdjuster defines the interface for the scheduled debt sweeps.
// This interface allows the job to call the service without importing
// the service package directly.
type DebtAdjuster interface {
	// IncreaseAll adds a random amount to every network's debt.
	IncreaseAll(ctx context.Context) (*domain.DebtRunResult, error)

	// DecreaseAll subtracts a random amount from networks able to cover it.
	DecreaseAll(ctx context.Context) (*domain.DebtRunResult, error)
}

// IncreaseDebtJob periodically grows every network's debt.
type IncreaseDebtJob struct {
	debts   DebtAdjuster
	logger  *zap.Logger
	timeout time.Duration
}

// NewIncreaseDebtJob creates the debt increase job.
func NewIncreaseDebtJob(debts DebtAdjuster, logger *zap.Logger, timeout time.Duration) *IncreaseDebtJob {
	return &IncreaseDebtJob{debts: debts, logger: logger, timeout: timeout}
}

// Run executes one debt increase sweep.
// This is called by the scheduler according to the cron expression.
func (j *IncreaseDebtJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.debts.IncreaseAll(ctx)
	if err != nil {
		j.logger.Error("debt increase job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("debt increase job finished",
		zap.Int64("amount", result.Amount),
		zap.Int64("updated", result.Updated),
		zap.Duration("duration", time.Since(start)))
}

// DecreaseDebtJob periodically shrinks the debt of networks that can
// cover the drawn amount.
type DecreaseDebtJob struct {
	debts   DebtAdjuster
	logger  *zap.Logger
	timeout time.Duration
}

// NewDecreaseDebtJob creates the debt decrease job.
func NewDecreaseDebtJob(debts DebtAdjuster, logger *zap.Logger, timeout time.Duration) *DecreaseDebtJob {
	return &DecreaseDebtJob{debts: debts, logger: logger, timeout: timeout}
}

// Run executes one debt decrease sweep.
func (j *DecreaseDebtJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.debts.DecreaseAll(ctx)
	if err != nil {
		j.logger.Error("debt decrease job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("debt decrease job finished",
		zap.Int64("amount", result.Amount),
		zap.Int64("updated", result.Updated),
		zap.Duration("duration", time.Since(start)))
}
