// Package fx converts transaction-currency amounts into a ledger's base
// currency using a dated exchange rate.
package fx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
)

// RateSource supplies the exchange rate between two currencies on a date.
// Implementations live outside this module (rate provider clients).
type RateSource interface {
	Rate(ctx context.Context, from, to string, date time.Time) (float64, error)
}

// Converter converts minor-unit amounts between currencies. Rates are cached
// in Redis per (from, to, day) with an explicit TTL; the cache is owned by
// the instance, never process-global, so nothing leaks across tenants.
type Converter struct {
	source RateSource
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewConverter constructs a converter. cache may be nil, in which case every
// lookup goes to the source.
func NewConverter(source RateSource, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Converter {
	return &Converter{source: source, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (c *Converter) WithNow(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Convert returns amount expressed in the to currency at the rate for date.
// A future date uses today's rate instead, because future rates cannot exist.
// A rate failure surfaces as ErrRateUnavailable; conversion never silently
// falls back to 1:1.
func (c *Converter) Convert(ctx context.Context, from, to string, date time.Time, amount int64) (int64, error) {
	if from == to {
		return amount, nil
	}
	rate, err := c.rate(ctx, from, to, c.clampDate(date))
	if err != nil {
		return 0, fmt.Errorf("%w: %s->%s: %v", shared.ErrRateUnavailable, from, to, err)
	}
	return int64(math.Round(float64(amount) * rate)), nil
}

// Warm fetches today's rate for the pair so it is cached before the first
// conversion needs it.
func (c *Converter) Warm(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}
	if _, err := c.rate(ctx, from, to, c.clampDate(c.now())); err != nil {
		return fmt.Errorf("%w: %s->%s: %v", shared.ErrRateUnavailable, from, to, err)
	}
	return nil
}

func (c *Converter) clampDate(date time.Time) time.Time {
	now := c.now().UTC()
	if date.After(now) {
		return now.Truncate(24 * time.Hour)
	}
	return date.UTC().Truncate(24 * time.Hour)
}

func (c *Converter) rate(ctx context.Context, from, to string, day time.Time) (float64, error) {
	key := rateKey(from, to, day)
	if c.cache != nil {
		val, err := c.cache.Get(ctx, key).Result()
		if err == nil {
			rate, parseErr := strconv.ParseFloat(val, 64)
			if parseErr == nil {
				return rate, nil
			}
		} else if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("fx cache read", slog.String("key", key), slog.Any("error", err))
		}
	}
	rate, err := c.source.Rate(ctx, from, to, day)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("fx: non-positive rate %v", rate)
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, strconv.FormatFloat(rate, 'f', -1, 64), c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.Warn("fx cache write", slog.String("key", key), slog.Any("error", err))
		}
	}
	return rate, nil
}

func rateKey(from, to string, day time.Time) string {
	return fmt.Sprintf("fx:rate:%s:%s:%s", from, to, day.Format("2006-01-02"))
}
