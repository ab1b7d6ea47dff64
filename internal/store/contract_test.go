package store

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/abgdnv/gocommerce-analytics/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns an empty store for a single test.
type storeFactory func(t *testing.T) Store

var (
	day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day1 = day0.Add(24 * time.Hour)
	day2 = day0.Add(48 * time.Hour)
)

func seedProduct(t *testing.T, s Store, name, category string) Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), &Product{Name: name, Category: category})
	require.NoError(t, err)
	return *p
}

func seedOrder(t *testing.T, s Store, customerID uuid.UUID, status string, at time.Time, total float64, items ...LineItem) Order {
	t.Helper()
	o, err := s.CreateOrder(context.Background(), &Order{
		CustomerID:  customerID,
		Products:    items,
		TotalAmount: total,
		OrderDate:   at,
		Status:      status,
	})
	require.NoError(t, err)
	return *o
}

func item(p Product, qty int32, price float64) LineItem {
	return LineItem{ProductID: p.ID, Quantity: qty, PriceAtPurchase: price}
}

// runStoreContract checks the aggregation semantics every Store implementation must share.
func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("CustomerSpending returns nothing without completed orders", func(t *testing.T) {
		s := newStore(t)
		customer := uuid.New()
		p := seedProduct(t, s, "Mug", "kitchen")
		seedOrder(t, s, customer, "pending", day0, 10, item(p, 1, 10))

		cs, err := s.CustomerSpending(context.Background(), customer)
		require.NoError(t, err)
		assert.Nil(t, cs)

		cs, err = s.CustomerSpending(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, cs)
	})

	t.Run("CustomerSpending aggregates only completed orders of the customer", func(t *testing.T) {
		s := newStore(t)
		customer := uuid.New()
		p := seedProduct(t, s, "Mug", "kitchen")
		seedOrder(t, s, customer, StatusCompleted, day0, 10, item(p, 1, 10))
		seedOrder(t, s, customer, StatusCompleted, day2, 30, item(p, 3, 10))
		seedOrder(t, s, customer, "cancelled", day2.Add(time.Hour), 1000, item(p, 100, 10))
		seedOrder(t, s, uuid.New(), StatusCompleted, day1, 500, item(p, 50, 10))

		cs, err := s.CustomerSpending(context.Background(), customer)
		require.NoError(t, err)
		require.NotNil(t, cs)
		assert.Equal(t, customer, cs.CustomerID)
		assert.InDelta(t, 40.0, cs.TotalSpent, 1e-9)
		assert.InDelta(t, 20.0, cs.AverageOrderValue, 1e-9)
		assert.True(t, day2.Equal(cs.LastOrderDate), "last order date %s", cs.LastOrderDate)
	})

	t.Run("TopSellingProducts pages partition the ranking", func(t *testing.T) {
		s := newStore(t)
		customer := uuid.New()
		a := seedProduct(t, s, "A", "x")
		b := seedProduct(t, s, "B", "x")
		c := seedProduct(t, s, "C", "y")
		d := seedProduct(t, s, "D", "y")
		seedOrder(t, s, customer, StatusCompleted, day0, 0, item(a, 5, 1), item(b, 2, 1))
		seedOrder(t, s, customer, StatusCompleted, day1, 0, item(c, 7, 1), item(b, 1, 1), item(d, 1, 1))
		seedOrder(t, s, customer, "pending", day1, 0, item(d, 100, 1))

		all, err := s.TopSellingProducts(context.Background(), Page{Offset: 0, Limit: 10})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []int64{7, 5, 3, 1}, []int64{all[0].TotalSold, all[1].TotalSold, all[2].TotalSold, all[3].TotalSold})
		assert.Equal(t, "C", all[0].Name)
		assert.Equal(t, d.ID, all[3].ProductID)

		first, err := s.TopSellingProducts(context.Background(), Page{Offset: 0, Limit: 2})
		require.NoError(t, err)
		second, err := s.TopSellingProducts(context.Background(), Page{Offset: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, all, append(first, second...))

		beyond, err := s.TopSellingProducts(context.Background(), Page{Offset: 4, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, beyond)
	})

	t.Run("TopSellingProducts breaks ties by product id", func(t *testing.T) {
		s := newStore(t)
		a := seedProduct(t, s, "A", "x")
		b := seedProduct(t, s, "B", "x")
		seedOrder(t, s, uuid.New(), StatusCompleted, day0, 0, item(a, 2, 1), item(b, 2, 1))

		ranked, err := s.TopSellingProducts(context.Background(), Page{Offset: 0, Limit: 10})
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		lower, higher := a.ID, b.ID
		if lower.String() > higher.String() {
			lower, higher = higher, lower
		}
		assert.Equal(t, lower, ranked[0].ProductID)
		assert.Equal(t, higher, ranked[1].ProductID)
	})

	t.Run("TopSellingProducts drops rows of missing products", func(t *testing.T) {
		s := newStore(t)
		a := seedProduct(t, s, "A", "x")
		ghost := Product{ID: uuid.New()}
		seedOrder(t, s, uuid.New(), StatusCompleted, day0, 0, item(ghost, 9, 1), item(a, 1, 1))

		ranked, err := s.TopSellingProducts(context.Background(), Page{Offset: 0, Limit: 1})
		require.NoError(t, err)
		assert.Empty(t, ranked)

		ranked, err = s.TopSellingProducts(context.Background(), Page{Offset: 0, Limit: 5})
		require.NoError(t, err)
		require.Len(t, ranked, 1)
		assert.Equal(t, a.ID, ranked[0].ProductID)
	})

	t.Run("SalesAnalytics includes both range boundaries", func(t *testing.T) {
		s := newStore(t)
		p := seedProduct(t, s, "A", "x")
		seedOrder(t, s, uuid.New(), StatusCompleted, day0, 10, item(p, 1, 10))
		seedOrder(t, s, uuid.New(), StatusCompleted, day1, 20, item(p, 1, 20))
		seedOrder(t, s, uuid.New(), StatusCompleted, day2.Add(time.Second), 40, item(p, 1, 40))

		sa, err := s.SalesAnalytics(context.Background(), DateRange{From: day0, To: day1})
		require.NoError(t, err)
		require.NotNil(t, sa.TotalRevenue)
		require.NotNil(t, sa.CompletedOrders)
		assert.InDelta(t, 30.0, *sa.TotalRevenue, 1e-9)
		assert.Equal(t, int64(2), *sa.CompletedOrders)
	})

	t.Run("SalesAnalytics category breakdown sums prices at purchase", func(t *testing.T) {
		s := newStore(t)
		book := seedProduct(t, s, "Book", "books")
		pen := seedProduct(t, s, "Pen", "office")
		pad := seedProduct(t, s, "Pad", "office")
		seedOrder(t, s, uuid.New(), StatusCompleted, day0, 27.5, item(book, 1, 12.5), item(pen, 3, 5))
		seedOrder(t, s, uuid.New(), StatusCompleted, day1, 30.25, item(book, 2, 20), item(pad, 1, 10.25))
		seedOrder(t, s, uuid.New(), "refunded", day1, 99, item(book, 1, 99))

		sa, err := s.SalesAnalytics(context.Background(), DateRange{From: day0, To: day2})
		require.NoError(t, err)
		require.NotNil(t, sa.TotalRevenue)
		assert.InDelta(t, 57.75, *sa.TotalRevenue, 1e-9)
		assert.Equal(t, int64(2), *sa.CompletedOrders)
		require.Len(t, sa.CategoryBreakdown, 2)
		assert.Equal(t, "books", sa.CategoryBreakdown[0].Category)
		assert.InDelta(t, 32.5, sa.CategoryBreakdown[0].Revenue, 1e-9)
		assert.Equal(t, "office", sa.CategoryBreakdown[1].Category)
		assert.InDelta(t, 15.25, sa.CategoryBreakdown[1].Revenue, 1e-9)
	})

	t.Run("SalesAnalytics reports absent totals for an empty range", func(t *testing.T) {
		s := newStore(t)
		p := seedProduct(t, s, "A", "x")
		seedOrder(t, s, uuid.New(), StatusCompleted, day2, 10, item(p, 1, 10))

		sa, err := s.SalesAnalytics(context.Background(), DateRange{From: day0, To: day1})
		require.NoError(t, err)
		assert.Nil(t, sa.TotalRevenue)
		assert.Nil(t, sa.CompletedOrders)
		assert.NotNil(t, sa.CategoryBreakdown)
		assert.Empty(t, sa.CategoryBreakdown)
	})

	t.Run("CreateOrder rejects a nil customer id", func(t *testing.T) {
		s := newStore(t)
		p := seedProduct(t, s, "A", "x")

		_, err := s.CreateOrder(context.Background(), &Order{
			Products: []LineItem{item(p, 1, 1)}, TotalAmount: 1, OrderDate: day0, Status: StatusCompleted,
		})
		require.ErrorIs(t, err, apperrors.ErrCreateOrder)

		ranked, err := s.TopSellingProducts(context.Background(), Page{Offset: 0, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, ranked, "rejected order must not be stored")
	})

	t.Run("CreateOrder persists the document", func(t *testing.T) {
		s := newStore(t)
		p := seedProduct(t, s, "A", "x")
		customer := uuid.New()

		created, err := s.CreateOrder(context.Background(), &Order{
			CustomerID:  customer,
			Products:    []LineItem{item(p, 2, 4.5)},
			TotalAmount: 9,
			OrderDate:   day1,
			Status:      StatusCompleted,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.True(t, day1.Equal(created.OrderDate))
		assert.Equal(t, []LineItem{item(p, 2, 4.5)}, created.Products)

		cs, err := s.CustomerSpending(context.Background(), customer)
		require.NoError(t, err)
		require.NotNil(t, cs)
		assert.InDelta(t, 9.0, cs.TotalSpent, 1e-9)
	})
}
