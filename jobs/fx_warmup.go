package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tidewater-fin/tidewater/internal/observability"
)

// RateWarmer pre-caches the rate for one conversion direction.
type RateWarmer interface {
	Warm(ctx context.Context, from, to string) error
}

// FxWarmupJob refreshes today's exchange rates ahead of the first sync that
// needs them, so document syncs do not pay the provider round trip.
type FxWarmupJob struct {
	warmer  RateWarmer
	pairs   []CurrencyPair
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFxWarmupJob configures the job with the default pairs warmed when a
// task carries none of its own.
func NewFxWarmupJob(warmer RateWarmer, pairs []CurrencyPair, logger *slog.Logger, metrics *observability.Metrics) *FxWarmupJob {
	return &FxWarmupJob{warmer: warmer, pairs: pairs, logger: logger, metrics: metrics}
}

// Handle processes one TaskFxWarmup task.
func (j *FxWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload FxWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	pairs := payload.Pairs
	if len(pairs) == 0 {
		pairs = j.pairs
	}
	var failed []error
	for _, pair := range pairs {
		if err := j.warmer.Warm(ctx, pair.From, pair.To); err != nil {
			if j.logger != nil {
				j.logger.Warn("fx warmup",
					slog.String("run_id", payload.RunID),
					slog.String("from", pair.From),
					slog.String("to", pair.To),
					slog.Any("error", err))
			}
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		j.metrics.RecordJob(TaskFxWarmup, "error")
		return errors.Join(failed...)
	}
	j.metrics.RecordJob(TaskFxWarmup, "ok")
	return nil
}
