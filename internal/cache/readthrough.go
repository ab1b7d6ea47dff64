package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// Loader computes the value for a key on a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// ReadThrough serves JSON-encoded values of type T from a Cache and fills it on a miss.
// The cache is best-effort: its failures are logged and the loader result is returned anyway.
// Concurrent misses for the same key share one loader call.
type ReadThrough[T any] struct {
	cache    Cache
	group    singleflight.Group
	logger   *slog.Logger
	requests metric.Int64Counter

	loadTimeout time.Duration
}

// DefaultLoadTimeout bounds a shared load once it no longer follows any caller's deadline.
const DefaultLoadTimeout = 30 * time.Second

var (
	resultHit   = metric.WithAttributes(attribute.String("result", "hit"))
	resultMiss  = metric.WithAttributes(attribute.String("result", "miss"))
	resultError = metric.WithAttributes(attribute.String("result", "error"))
)

func NewReadThrough[T any](c Cache, logger *slog.Logger, meter metric.Meter) (*ReadThrough[T], error) {
	requests, err := meter.Int64Counter("analytics_cache_requests",
		metric.WithDescription("Result cache lookups by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache counter: %w", err)
	}
	return &ReadThrough[T]{
		cache:       c,
		logger:      logger,
		requests:    requests,
		loadTimeout: DefaultLoadTimeout,
	}, nil
}

// WithLoadTimeout replaces DefaultLoadTimeout.
func (r *ReadThrough[T]) WithLoadTimeout(d time.Duration) *ReadThrough[T] {
	if d > 0 {
		r.loadTimeout = d
	}
	return r
}

// Get returns the cached value for key or computes it with load. The shared load runs detached from
// the caller that started it, bounded by loadTimeout, so a caller going away never fails the others
// waiting on the same key. Each caller still stops waiting when its own ctx is done.
func (r *ReadThrough[T]) Get(ctx context.Context, key string, load Loader[T]) (T, error) {
	var zero T
	if v, ok := r.lookup(ctx, key); ok {
		return v, nil
	}

	ch := r.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		r.store(loadCtx, key, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (r *ReadThrough[T]) lookup(ctx context.Context, key string) (T, bool) {
	var v T
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.requests.Add(ctx, 1, resultError)
		r.logger.WarnContext(ctx, "cache lookup failed, computing result", "key", key, "error", err)
		return v, false
	}
	if !ok {
		r.requests.Add(ctx, 1, resultMiss)
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		r.requests.Add(ctx, 1, resultError)
		r.logger.WarnContext(ctx, "cache entry is corrupt, computing result", "key", key, "error", err)
		return v, false
	}
	r.requests.Add(ctx, 1, resultHit)
	return v, true
}

func (r *ReadThrough[T]) store(ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, data); err != nil {
		r.logger.WarnContext(ctx, "failed to store cache entry", "key", key, "error", err)
	}
}
