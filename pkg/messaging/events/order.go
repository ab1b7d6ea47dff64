package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocommerce-analytics/pkg/messaging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
)

// OrderCreatedEvent is emitted after an order has been persisted.
// Carrier holds the trace context of the request that created the order.
type OrderCreatedEvent struct {
	Carrier     propagation.MapCarrier `json:"carrier,omitempty"`
	OrderID     uuid.UUID              `json:"order_id"`
	CustomerID  uuid.UUID              `json:"customer_id"`
	Status      string                 `json:"status"`
	TotalAmount float64                `json:"total_amount"`
	ItemCount   int                    `json:"item_count"`
	OrderDate   time.Time              `json:"order_date"`
}

func (o OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (o OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
