package cache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/abgdnv/gocommerce-analytics/pkg/config"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsKV is a Cache on a JetStream Key-Value bucket. The bucket TTL expires entries server side.
type NatsKV struct {
	kv jetstream.KeyValue
}

var _ Cache = (*NatsKV)(nil)

// NewNatsKV creates the bucket if needed, or updates its TTL to the configured one.
func NewNatsKV(ctx context.Context, js jetstream.JetStream, cfg config.CacheConfig) (*NatsKV, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "sales analytics results",
		TTL:         cfg.TTL,
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create key-value bucket %s: %w", cfg.Bucket, err)
	}
	return &NatsKV{kv: kv}, nil
}

// kvKey maps an arbitrary key onto the token alphabet allowed by JetStream.
func kvKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (n *NatsKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, err := n.kv.Get(ctx, kvKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get %q: %w", ErrCacheUnavailable, key, err)
	}
	return e.Value(), true, nil
}

func (n *NatsKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := n.kv.Put(ctx, kvKey(key), value); err != nil {
		return fmt.Errorf("%w: put %q: %w", ErrCacheUnavailable, key, err)
	}
	return nil
}
