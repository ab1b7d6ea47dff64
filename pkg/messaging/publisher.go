// Package messaging defines the outbound event contract of the service.
package messaging

import (
	"context"
)

const (
	// OrdersStream captures every order subject.
	OrdersStream         = "ORDERS"
	OrdersSubjects       = "orders.>"
	OrdersCreatedSubject = "orders.created"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
