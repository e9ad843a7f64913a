package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/botica-erp/botica-erp/internal/rates"
)

// RatesRefreshJob fetches the external exchange rate and stores it as the
// day's active rate.
type RatesRefreshJob struct {
	service *rates.Service
	logger  *slog.Logger
}

// NewRatesRefreshJob constructs RatesRefreshJob.
func NewRatesRefreshJob(service *rates.Service, logger *slog.Logger) *RatesRefreshJob {
	return &RatesRefreshJob{service: service, logger: logger}
}

// Handle processes TaskRatesRefresh tasks.
func (j *RatesRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RatesRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	rate, err := j.service.RefreshExchange(ctx)
	if err != nil {
		j.logger.Error("rates refresh failed", slog.String("reason", payload.Reason), slog.Any("error", err))
		return err
	}
	j.logger.Info("rates refreshed",
		slog.String("reason", payload.Reason),
		slog.String("pair", rate.FromCurrency+"/"+rate.ToCurrency),
		slog.Float64("rate", rate.Rate))
	return nil
}

// HandleBackup processes TaskRatesBackup tasks. It refreshes only when the
// active rate is missing or older than today, so a successful morning run
// makes the backup a no-op.
func (j *RatesRefreshJob) HandleBackup(ctx context.Context, t *asynq.Task) error {
	from, to := j.service.DefaultPair()
	current, err := j.service.CurrentExchange(ctx, from, to)
	switch {
	case errors.Is(err, rates.ErrNoActiveRate):
		// fall through to refresh
	case err != nil:
		return err
	case sameDay(current.RateDate, time.Now()):
		j.logger.Info("rates backup skipped, rate already current",
			slog.String("pair", from+"/"+to))
		return nil
	}
	return j.Handle(ctx, t)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
