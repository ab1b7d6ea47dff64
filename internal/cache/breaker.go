package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/gocommerce-analytics/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// Breaker stops calling a failing cache until the open timeout elapses.
type Breaker struct {
	next Cache
	cb   *gobreaker.CircuitBreaker[any]
}

var _ Cache = (*Breaker)(nil)

type getResult struct {
	value []byte
	found bool
}

func NewBreaker(next Cache, cfg config.CircuitBreakerConfig, logger *slog.Logger) *Breaker {
	st := gobreaker.Settings{
		Name:        "analytics-cache",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.Requests >= cfg.MinRequests &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent))
		},
		// A caller giving up is not a cache failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[any](st)}
}

func (b *Breaker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := b.cb.Execute(func() (any, error) {
		v, ok, err := b.next.Get(ctx, key)
		return getResult{value: v, found: ok}, err
	})
	if err != nil {
		return nil, false, rejected(err)
	}
	r := res.(getResult)
	return r.value, r.found, nil
}

func (b *Breaker) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return rejected(err)
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func rejected(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return err
}
