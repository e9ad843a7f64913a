package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRatesRefresh pulls the day's exchange rate from the external provider.
	TaskRatesRefresh = "rates:refresh"
	// TaskRatesBackup re-runs the refresh when the morning run left no rate
	// for the current day.
	TaskRatesBackup = "rates:backup"
	// TaskHousekeeping prunes expired idempotency keys.
	TaskHousekeeping = "ledger:housekeeping"
)

// RatesRefreshPayload parametrizes a refresh run.
type RatesRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewRatesRefreshTask constructs the scheduled refresh task.
func NewRatesRefreshTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(RatesRefreshPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRatesRefresh, data), nil
}

// NewRatesBackupTask constructs the backup refresh task.
func NewRatesBackupTask() (*asynq.Task, error) {
	data, err := json.Marshal(RatesRefreshPayload{Reason: "backup"})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRatesBackup, data), nil
}

// NewHousekeepingTask constructs the nightly cleanup task.
func NewHousekeepingTask() *asynq.Task {
	return asynq.NewTask(TaskHousekeeping, nil)
}
