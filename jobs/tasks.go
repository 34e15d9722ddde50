package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity verifies that every ledger's entries net to zero.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskFxWarmup pre-caches today's exchange rates for configured pairs.
	TaskFxWarmup = "fx:warmup"
)

// LedgerIntegrityPayload carries the run identity of one integrity sweep.
type LedgerIntegrityPayload struct {
	RunID string `json:"run_id"`
}

// CurrencyPair names a conversion direction to warm.
type CurrencyPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FxWarmupPayload lists the pairs to warm. Empty means the worker's
// configured defaults.
type FxWarmupPayload struct {
	RunID string         `json:"run_id"`
	Pairs []CurrencyPair `json:"pairs,omitempty"`
}

// NewLedgerIntegrityTask constructs an Asynq task for an integrity sweep.
func NewLedgerIntegrityTask() (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{RunID: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewFxWarmupTask constructs an Asynq task warming the given pairs.
func NewFxWarmupTask(pairs []CurrencyPair) (*asynq.Task, error) {
	data, err := json.Marshal(FxWarmupPayload{RunID: uuid.NewString(), Pairs: pairs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFxWarmup, data), nil
}
