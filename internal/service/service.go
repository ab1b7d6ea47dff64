// Package service implements the analytics queries and the order write path on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/abgdnv/gocommerce-analytics/internal/cache"
	apperrors "github.com/abgdnv/gocommerce-analytics/internal/errors"
	"github.com/abgdnv/gocommerce-analytics/internal/store"
	"github.com/abgdnv/gocommerce-analytics/pkg/messaging"
	"github.com/abgdnv/gocommerce-analytics/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// AnalyticsService defines the queries and the write path exposed by the API.
type AnalyticsService interface {
	// CustomerSpending summarizes the completed orders of a customer.
	// Returns nil without error when the customer has none.
	CustomerSpending(ctx context.Context, customerID string) (*store.CustomerSpending, error)

	// TopSellingProducts returns one page of the products ranked by units sold.
	TopSellingProducts(ctx context.Context, page, limit int32) ([]store.TopProduct, error)

	// SalesAnalytics returns revenue totals and the category breakdown for an inclusive date range.
	// Results are served from the cache for its TTL.
	SalesAnalytics(ctx context.Context, startDate, endDate string) (*store.SalesAnalytics, error)

	// CreateOrder persists an order dated now. It never returns an error, the cause is carried in the result.
	CreateOrder(ctx context.Context, input CreateOrderInput) CreateOrderResult
}

// Service implements AnalyticsService.
type Service struct {
	store         store.Store
	salesCache    *cache.ReadThrough[store.SalesAnalytics]
	publisher     messaging.Publisher
	clock         clockwork.Clock
	validate      *validator.Validate
	logger        *slog.Logger
	maxPageSize   int32
	ordersCounter metric.Int64Counter
}

var _ AnalyticsService = (*Service)(nil)

// NewService creates a new instance of AnalyticsService.
func NewService(st store.Store, salesCache *cache.ReadThrough[store.SalesAnalytics], publisher messaging.Publisher,
	clock clockwork.Clock, maxPageSize int32, logger *slog.Logger) *Service {
	meter := otel.Meter("analytics-service")
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &Service{
		store:         st,
		salesCache:    salesCache,
		publisher:     publisher,
		clock:         clock,
		validate:      validator.New(),
		logger:        logger,
		maxPageSize:   maxPageSize,
		ordersCounter: ordersCounter,
	}
}

// CreateOrderInput is the order as submitted by the client. Identifiers are still strings.
type CreateOrderInput struct {
	CustomerID  string              `validate:"required,uuid"`
	Products    []OrderProductInput `validate:"required,dive"`
	TotalAmount float64
	Status      string `validate:"required"`
}

type OrderProductInput struct {
	ProductID       string `validate:"required,uuid"`
	Quantity        int32
	PriceAtPurchase float64
}

// CreateOrderResult tells whether the order was stored. Err holds the cause of a failure.
type CreateOrderResult struct {
	OrderID uuid.UUID
	Err     error
}

func (r CreateOrderResult) OK() bool {
	return r.Err == nil
}

type pageRequest struct {
	Page  int32 `validate:"gte=1"`
	Limit int32 `validate:"gte=1"`
}

func (s *Service) CustomerSpending(ctx context.Context, customerID string) (*store.CustomerSpending, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return nil, apperrors.InvalidArgument("customerId %q is not a valid identifier", customerID)
	}
	return s.store.CustomerSpending(ctx, id)
}

func (s *Service) TopSellingProducts(ctx context.Context, page, limit int32) ([]store.TopProduct, error) {
	if err := s.validate.Struct(pageRequest{Page: page, Limit: limit}); err != nil {
		return nil, invalidArgument(err)
	}
	if limit > s.maxPageSize {
		return nil, apperrors.InvalidArgument("limit must not exceed %d", s.maxPageSize)
	}
	offset := (int64(page) - 1) * int64(limit)
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}
	return s.store.TopSellingProducts(ctx, store.Page{Offset: int32(offset), Limit: limit})
}

func (s *Service) SalesAnalytics(ctx context.Context, startDate, endDate string) (*store.SalesAnalytics, error) {
	from, err := ParseDate(startDate)
	if err != nil {
		return nil, apperrors.InvalidArgument("startDate: %v", err)
	}
	to, err := ParseDate(endDate)
	if err != nil {
		return nil, apperrors.InvalidArgument("endDate: %v", err)
	}

	sa, err := s.salesCache.Get(ctx, AnalyticsKey(startDate, endDate), func(ctx context.Context) (store.SalesAnalytics, error) {
		sa, err := s.store.SalesAnalytics(ctx, store.DateRange{From: from, To: to})
		if err != nil {
			return store.SalesAnalytics{}, err
		}
		return *sa, nil
	})
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) CreateOrderResult {
	order, err := s.toOrder(input)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected order", "error", err)
		return CreateOrderResult{Err: err}
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create order", "customer_id", order.CustomerID, "error", err)
		return CreateOrderResult{Err: err}
	}

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.OrderCreatedEvent{
		Carrier:     carrier,
		OrderID:     created.ID,
		CustomerID:  created.CustomerID,
		Status:      created.Status,
		TotalAmount: created.TotalAmount,
		ItemCount:   len(created.Products),
		OrderDate:   created.OrderDate,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "order_id", created.ID, "error", err)
	}
	s.ordersCounter.Add(ctx, 1)

	return CreateOrderResult{OrderID: created.ID}
}

func (s *Service) toOrder(input CreateOrderInput) (*store.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, invalidArgument(err)
	}
	customerID, err := uuid.Parse(input.CustomerID)
	if err != nil || customerID == uuid.Nil {
		return nil, apperrors.InvalidArgument("customerId %q is not a valid identifier", input.CustomerID)
	}
	items := make([]store.LineItem, 0, len(input.Products))
	for _, p := range input.Products {
		productID, err := uuid.Parse(p.ProductID)
		if err != nil {
			return nil, apperrors.InvalidArgument("productId %q is not a valid identifier", p.ProductID)
		}
		items = append(items, store.LineItem{
			ProductID:       productID,
			Quantity:        p.Quantity,
			PriceAtPurchase: p.PriceAtPurchase,
		})
	}
	return &store.Order{
		CustomerID:  customerID,
		Products:    items,
		TotalAmount: input.TotalAmount,
		OrderDate:   s.clock.Now().UTC(),
		Status:      input.Status,
	}, nil
}

// invalidArgument flattens validator errors into a single ErrInvalidArgument.
func invalidArgument(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.InvalidArgument("%v", err)
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return apperrors.InvalidArgument("%s", strings.Join(fields, "; "))
}
