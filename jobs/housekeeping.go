package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/botica-erp/botica-erp/internal/shared"
)

// idempotencyRetention is how long processed request keys are kept before the
// nightly cleanup removes them.
const idempotencyRetention = 7 * 24 * time.Hour

// HousekeepingJob prunes expired idempotency keys.
type HousekeepingJob struct {
	store  *shared.IdempotencyStore
	logger *slog.Logger
}

// NewHousekeepingJob constructs HousekeepingJob.
func NewHousekeepingJob(store *shared.IdempotencyStore, logger *slog.Logger) *HousekeepingJob {
	return &HousekeepingJob{store: store, logger: logger}
}

// Handle processes TaskHousekeeping tasks.
func (j *HousekeepingJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if err := j.store.Cleanup(ctx, idempotencyRetention); err != nil {
		j.logger.Error("idempotency cleanup failed", slog.Any("error", err))
		return err
	}
	j.logger.Info("idempotency keys pruned", slog.Duration("retention", idempotencyRetention))
	return nil
}
