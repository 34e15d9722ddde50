package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/tidewater-fin/tidewater/internal/ledger"
	"github.com/tidewater-fin/tidewater/internal/observability"
)

// IntegrityJob sweeps every ledger and verifies its entries net to zero.
// Replace-all syncs keep the invariant transactionally, so a non-zero net
// means corruption and is worth an alert.
type IntegrityJob struct {
	ledgers ledger.Repository
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewIntegrityJob(ledgers ledger.Repository, logger *slog.Logger, metrics *observability.Metrics) *IntegrityJob {
	return &IntegrityJob{ledgers: ledgers, logger: logger, metrics: metrics}
}

// Handle processes one TaskLedgerIntegrity task.
func (j *IntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.run(ctx, payload.RunID); err != nil {
		j.metrics.RecordJob(TaskLedgerIntegrity, "error")
		return err
	}
	j.metrics.RecordJob(TaskLedgerIntegrity, "ok")
	return nil
}

func (j *IntegrityJob) run(ctx context.Context, runID string) error {
	ledgers, err := j.ledgers.List(ctx)
	if err != nil {
		return fmt.Errorf("list ledgers: %w", err)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, led := range ledgers {
		led := led
		g.Go(func() error {
			net, err := j.ledgers.NetBalance(ctx, led.ID)
			if err != nil {
				return fmt.Errorf("net balance for %q: %w", led.Name, err)
			}
			if net != 0 {
				if j.logger != nil {
					j.logger.Error("ledger out of balance",
						slog.String("run_id", runID),
						slog.String("ledger", led.Name),
						slog.Int64("net", net))
				}
				return fmt.Errorf("ledger %q nets %d", led.Name, net)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("ledger integrity check passed",
			slog.String("run_id", runID),
			slog.Int("ledgers", len(ledgers)))
	}
	return nil
}
