package graphql

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/abgdnv/gocommerce-analytics/internal/service"
	"github.com/abgdnv/gocommerce-analytics/internal/store"
	gql "github.com/graph-gophers/graphql-go"
)

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	svc    service.AnalyticsService
	logger *slog.Logger
}

func NewResolver(svc service.AnalyticsService, logger *slog.Logger) *Resolver {
	return &Resolver{svc: svc, logger: logger}
}

func (r *Resolver) GetCustomerSpending(ctx context.Context, args struct{ CustomerID gql.ID }) (*customerSpendingResolver, error) {
	cs, err := r.svc.CustomerSpending(ctx, string(args.CustomerID))
	if err != nil {
		return nil, toError(ctx, r.logger, "getCustomerSpending", err)
	}
	if cs == nil {
		return nil, nil
	}
	return &customerSpendingResolver{cs: cs}, nil
}

func (r *Resolver) GetTopSellingProducts(ctx context.Context, args struct {
	Page  int32
	Limit int32
}) (*[]*topProductResolver, error) {
	products, err := r.svc.TopSellingProducts(ctx, args.Page, args.Limit)
	if err != nil {
		return nil, toError(ctx, r.logger, "getTopSellingProducts", err)
	}
	out := make([]*topProductResolver, len(products))
	for i := range products {
		out[i] = &topProductResolver{p: products[i]}
	}
	return &out, nil
}

func (r *Resolver) GetSalesAnalytics(ctx context.Context, args struct {
	StartDate string
	EndDate   string
}) (*salesAnalyticsResolver, error) {
	sa, err := r.svc.SalesAnalytics(ctx, args.StartDate, args.EndDate)
	if err != nil {
		return nil, toError(ctx, r.logger, "getSalesAnalytics", err)
	}
	return &salesAnalyticsResolver{sa: sa}, nil
}

type orderProductInput struct {
	ProductID       gql.ID
	Quantity        int32
	PriceAtPurchase float64
}

// CreateOrder reports only success or failure. The cause is logged by the service.
func (r *Resolver) CreateOrder(ctx context.Context, args struct {
	CustomerID  gql.ID
	Products    []orderProductInput
	TotalAmount float64
	Status      string
}) *bool {
	products := make([]service.OrderProductInput, len(args.Products))
	for i, p := range args.Products {
		products[i] = service.OrderProductInput{
			ProductID:       string(p.ProductID),
			Quantity:        p.Quantity,
			PriceAtPurchase: p.PriceAtPurchase,
		}
	}
	res := r.svc.CreateOrder(ctx, service.CreateOrderInput{
		CustomerID:  string(args.CustomerID),
		Products:    products,
		TotalAmount: args.TotalAmount,
		Status:      args.Status,
	})
	ok := res.OK()
	return &ok
}

type customerSpendingResolver struct {
	cs *store.CustomerSpending
}

func (r *customerSpendingResolver) CustomerID() gql.ID {
	return gql.ID(r.cs.CustomerID.String())
}

func (r *customerSpendingResolver) TotalSpent() *float64 {
	return &r.cs.TotalSpent
}

func (r *customerSpendingResolver) AverageOrderValue() *float64 {
	return &r.cs.AverageOrderValue
}

func (r *customerSpendingResolver) LastOrderDate() *string {
	s := r.cs.LastOrderDate.UTC().Format(time.RFC3339Nano)
	return &s
}

type topProductResolver struct {
	p store.TopProduct
}

func (r *topProductResolver) ProductID() gql.ID {
	return gql.ID(r.p.ProductID.String())
}

func (r *topProductResolver) Name() string {
	return r.p.Name
}

func (r *topProductResolver) TotalSold() *int32 {
	return graphQLInt(r.p.TotalSold)
}

type salesAnalyticsResolver struct {
	sa *store.SalesAnalytics
}

func (r *salesAnalyticsResolver) TotalRevenue() *float64 {
	return r.sa.TotalRevenue
}

func (r *salesAnalyticsResolver) CompletedOrders() *int32 {
	if r.sa.CompletedOrders == nil {
		return nil
	}
	return graphQLInt(*r.sa.CompletedOrders)
}

// graphQLInt saturates n to the signed 32-bit range of the GraphQL Int scalar.
func graphQLInt(n int64) *int32 {
	v := int32(max(math.MinInt32, min(n, math.MaxInt32)))
	return &v
}

func (r *salesAnalyticsResolver) CategoryBreakdown() *[]*categoryRevenueResolver {
	out := make([]*categoryRevenueResolver, len(r.sa.CategoryBreakdown))
	for i := range r.sa.CategoryBreakdown {
		out[i] = &categoryRevenueResolver{c: r.sa.CategoryBreakdown[i]}
	}
	return &out
}

type categoryRevenueResolver struct {
	c store.CategoryRevenue
}

func (r *categoryRevenueResolver) Category() string {
	return r.c.Category
}

func (r *categoryRevenueResolver) Revenue() float64 {
	return r.c.Revenue
}
