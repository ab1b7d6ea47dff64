package store

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	apperrors "github.com/abgdnv/gocommerce-analytics/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// inMemory implements Store with the same aggregation semantics as PgStore.
// Sums are accumulated as decimals to match the NUMERIC arithmetic of the database.
type inMemory struct {
	mu       sync.RWMutex
	orders   []Order
	products map[uuid.UUID]Product
}

// NewInMemoryStore creates a new instance of Store backed by process memory.
func NewInMemoryStore() Store {
	return &inMemory{
		products: make(map[uuid.UUID]Product),
	}
}

func (s *inMemory) CustomerSpending(_ context.Context, customerID uuid.UUID) (*CustomerSpending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found bool
		total decimal.Decimal
		count int64
		cs    = CustomerSpending{CustomerID: customerID}
	)
	for _, o := range s.orders {
		if o.CustomerID != customerID || o.Status != StatusCompleted {
			continue
		}
		found = true
		total = total.Add(decimal.NewFromFloat(o.TotalAmount))
		count++
		if o.OrderDate.After(cs.LastOrderDate) {
			cs.LastOrderDate = o.OrderDate
		}
	}
	if !found {
		return nil, nil
	}
	cs.TotalSpent = total.InexactFloat64()
	cs.AverageOrderValue = total.Div(decimal.NewFromInt(count)).InexactFloat64()
	return &cs, nil
}

func (s *inMemory) TopSellingProducts(_ context.Context, page Page) ([]TopProduct, error) {
	if page.Offset < 0 || page.Limit < 0 {
		return nil, apperrors.InvalidArgument("negative offset or limit")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sold := make(map[uuid.UUID]int64)
	for _, o := range s.orders {
		if o.Status != StatusCompleted {
			continue
		}
		for _, item := range o.Products {
			sold[item.ProductID] += int64(item.Quantity)
		}
	}

	ranked := make([]TopProduct, 0, len(sold))
	for id, total := range sold {
		ranked = append(ranked, TopProduct{ProductID: id, TotalSold: total})
	}
	slices.SortFunc(ranked, func(a, b TopProduct) int {
		if a.TotalSold != b.TotalSold {
			if a.TotalSold > b.TotalSold {
				return -1
			}
			return 1
		}
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	start := min(int(page.Offset), len(ranked))
	end := min(start+int(page.Limit), len(ranked))

	result := make([]TopProduct, 0, end-start)
	for _, tp := range ranked[start:end] {
		p, ok := s.products[tp.ProductID]
		if !ok {
			continue
		}
		tp.Name = p.Name
		result = append(result, tp)
	}
	return result, nil
}

func (s *inMemory) SalesAnalytics(_ context.Context, r DateRange) (*SalesAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		revenue    decimal.Decimal
		count      int64
		byCategory = make(map[string]decimal.Decimal)
	)
	for _, o := range s.orders {
		if o.Status != StatusCompleted || !r.Contains(o.OrderDate) {
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		count++
		for _, item := range o.Products {
			p, ok := s.products[item.ProductID]
			if !ok {
				continue
			}
			byCategory[p.Category] = byCategory[p.Category].Add(decimal.NewFromFloat(item.PriceAtPurchase))
		}
	}

	sa := &SalesAnalytics{CategoryBreakdown: make([]CategoryRevenue, 0, len(byCategory))}
	if count > 0 {
		totalRevenue := revenue.InexactFloat64()
		sa.TotalRevenue = &totalRevenue
		sa.CompletedOrders = &count
	}
	for category, sum := range byCategory {
		sa.CategoryBreakdown = append(sa.CategoryBreakdown, CategoryRevenue{Category: category, Revenue: sum.InexactFloat64()})
	}
	slices.SortFunc(sa.CategoryBreakdown, func(a, b CategoryRevenue) int {
		if a.Category < b.Category {
			return -1
		}
		if a.Category > b.Category {
			return 1
		}
		return 0
	})
	return sa, nil
}

func (s *inMemory) CreateOrder(_ context.Context, order *Order) (*Order, error) {
	if order.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer id is required", apperrors.ErrCreateOrder)
	}
	created := *order
	created.ID = uuid.New()
	created.Products = slices.Clone(order.Products)
	if created.Products == nil {
		created.Products = []LineItem{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, created)

	out := created
	out.Products = slices.Clone(created.Products)
	return &out, nil
}

func (s *inMemory) CreateProduct(_ context.Context, product *Product) (*Product, error) {
	created := *product
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[created.ID]; exists {
		return nil, fmt.Errorf("%w: duplicate id %s", apperrors.ErrCreateProduct, created.ID)
	}
	s.products[created.ID] = created
	return &created, nil
}

func (s *inMemory) Ping(context.Context) error {
	return nil
}
