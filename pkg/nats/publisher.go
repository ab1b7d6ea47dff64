package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/gocommerce-analytics/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher sends messaging events to JetStream.
type Publisher struct {
	js jetstream.JetStream
}

var _ messaging.Publisher = (*Publisher)(nil)

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
