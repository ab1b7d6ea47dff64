// Package store provides the order and product collections and the analytics aggregations over them.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusCompleted is the only order status counted by the analytics aggregations.
const StatusCompleted = "completed"

// LineItem is one embedded entry of an order's products list.
type LineItem struct {
	ProductID       uuid.UUID `json:"productId"`
	Quantity        int32     `json:"quantity"`
	PriceAtPurchase float64   `json:"priceAtPurchase"`
}

// Order is the order document.
type Order struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	Products    []LineItem
	TotalAmount float64
	OrderDate   time.Time
	Status      string
}

// Product is the product document joined by the analytics queries.
type Product struct {
	ID       uuid.UUID
	Name     string
	Category string
}

// CustomerSpending summarizes the completed orders of one customer.
type CustomerSpending struct {
	CustomerID        uuid.UUID
	TotalSpent        float64
	AverageOrderValue float64
	LastOrderDate     time.Time
}

// TopProduct is one row of the top-selling ranking.
type TopProduct struct {
	ProductID uuid.UUID
	Name      string
	TotalSold int64
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// SalesAnalytics is the combined result of the totals and category facets.
// The totals are nil when no completed order falls in the range.
type SalesAnalytics struct {
	TotalRevenue      *float64          `json:"totalRevenue"`
	CompletedOrders   *int64            `json:"completedOrders"`
	CategoryBreakdown []CategoryRevenue `json:"categoryBreakdown"`
}

// DateRange is inclusive on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies within the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

type Page struct {
	Offset int32
	Limit  int32
}

// AnalyticsStore runs the read-only aggregations.
type AnalyticsStore interface {
	// CustomerSpending aggregates the completed orders of a customer.
	// Returns nil without error when the customer has no completed orders.
	CustomerSpending(ctx context.Context, customerID uuid.UUID) (*CustomerSpending, error)

	// TopSellingProducts ranks products by quantity sold in completed orders,
	// ordered by total sold descending then product id ascending.
	// Rows whose product no longer exists are dropped after paging.
	TopSellingProducts(ctx context.Context, page Page) ([]TopProduct, error)

	// SalesAnalytics computes revenue totals and the per-category breakdown of
	// completed orders within the range.
	SalesAnalytics(ctx context.Context, r DateRange) (*SalesAnalytics, error)
}

// OrderStore persists orders and products.
type OrderStore interface {
	// CreateOrder inserts the order and returns it with its generated ID.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)

	// CreateProduct inserts a product, generating an ID when none is set.
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
}

// Store is implemented by PgStore and the in-memory store.
type Store interface {
	AnalyticsStore
	OrderStore
	Ping(ctx context.Context) error
}
