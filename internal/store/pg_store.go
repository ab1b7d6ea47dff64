package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/abgdnv/gocommerce-analytics/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store on PostgreSQL. Orders embed their line items as a jsonb array,
// and every aggregation is a single statement with one CTE per pipeline stage.
type PgStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PgStore)(nil)

// NewPgStore creates a new instance of Store using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const customerSpendingSQL = `
SELECT customer_id,
       SUM(total_amount)::float8 AS total_spent,
       AVG(total_amount)::float8 AS average_order_value,
       MAX(order_date)           AS last_order_date
FROM orders
WHERE customer_id = $1
  AND status = $2
GROUP BY customer_id`

func (p *PgStore) CustomerSpending(ctx context.Context, customerID uuid.UUID) (*CustomerSpending, error) {
	var cs CustomerSpending
	err := p.db.QueryRow(ctx, customerSpendingSQL, customerID, StatusCompleted).
		Scan(&cs.CustomerID, &cs.TotalSpent, &cs.AverageOrderValue, &cs.LastOrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Upstream(apperrors.ErrCustomerSpending, err)
	}
	return &cs, nil
}

const topSellingProductsSQL = `
WITH unwound AS (
    SELECT (item ->> 'productId')::uuid    AS product_id,
           (item ->> 'quantity')::bigint   AS quantity
    FROM orders o
             CROSS JOIN LATERAL jsonb_array_elements(o.products) AS item
    WHERE o.status = $1
),
     grouped AS (
         SELECT product_id, SUM(quantity)::bigint AS total_sold
         FROM unwound
         GROUP BY product_id
     ),
     paged AS (
         SELECT product_id, total_sold
         FROM grouped
         ORDER BY total_sold DESC, product_id ASC
         OFFSET $2 LIMIT $3
     )
SELECT pg.product_id, p.name, pg.total_sold
FROM paged pg
         JOIN products p ON p.id = pg.product_id
ORDER BY pg.total_sold DESC, pg.product_id ASC`

func (p *PgStore) TopSellingProducts(ctx context.Context, page Page) ([]TopProduct, error) {
	rows, err := p.db.Query(ctx, topSellingProductsSQL, StatusCompleted, page.Offset, page.Limit)
	if err != nil {
		return nil, apperrors.Upstream(apperrors.ErrTopSellingProducts, err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TopProduct, error) {
		var tp TopProduct
		err := row.Scan(&tp.ProductID, &tp.Name, &tp.TotalSold)
		return tp, err
	})
	if err != nil {
		return nil, apperrors.Upstream(apperrors.ErrTopSellingProducts, err)
	}
	return products, nil
}

// salesAnalyticsSQL evaluates the totals and categories facets over the same matched set.
// The totals facet yields no row for an empty match, so both totals come back NULL.
const salesAnalyticsSQL = `
WITH matched AS (
    SELECT total_amount, products
    FROM orders
    WHERE status = $1
      AND order_date >= $2
      AND order_date <= $3
),
     total AS (
         SELECT SUM(total_amount)::float8 AS total_revenue,
                COUNT(*)::bigint          AS completed_orders
         FROM matched
         HAVING COUNT(*) > 0
     ),
     categories AS (
         SELECT p.category,
                SUM((item ->> 'priceAtPurchase')::numeric)::float8 AS revenue
         FROM matched m
                  CROSS JOIN LATERAL jsonb_array_elements(m.products) AS item
                  JOIN products p ON p.id = (item ->> 'productId')::uuid
         GROUP BY p.category
     )
SELECT (SELECT total_revenue FROM total),
       (SELECT completed_orders FROM total),
       COALESCE((SELECT jsonb_agg(jsonb_build_object('category', category, 'revenue', revenue) ORDER BY category)
                 FROM categories), '[]'::jsonb)`

func (p *PgStore) SalesAnalytics(ctx context.Context, r DateRange) (*SalesAnalytics, error) {
	var sa SalesAnalytics
	err := p.db.QueryRow(ctx, salesAnalyticsSQL, StatusCompleted, r.From, r.To).
		Scan(&sa.TotalRevenue, &sa.CompletedOrders, &sa.CategoryBreakdown)
	if err != nil {
		return nil, apperrors.Upstream(apperrors.ErrSalesAnalytics, err)
	}
	if sa.CategoryBreakdown == nil {
		sa.CategoryBreakdown = []CategoryRevenue{}
	}
	return &sa, nil
}

const createOrderSQL = `
INSERT INTO orders (customer_id, products, total_amount, order_date, status)
VALUES ($1, $2::jsonb, $3::float8, $4, $5)
RETURNING id, order_date`

func (p *PgStore) CreateOrder(ctx context.Context, order *Order) (*Order, error) {
	if order.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer id is required", apperrors.ErrCreateOrder)
	}
	items := order.Products
	if items == nil {
		items = []LineItem{}
	}
	doc, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: encode line items: %w", apperrors.ErrCreateOrder, err)
	}

	created := *order
	created.Products = items
	err = p.db.QueryRow(ctx, createOrderSQL, order.CustomerID, string(doc), order.TotalAmount, order.OrderDate, order.Status).
		Scan(&created.ID, &created.OrderDate)
	if err != nil {
		return nil, apperrors.Upstream(apperrors.ErrCreateOrder, err)
	}
	return &created, nil
}

const createProductSQL = `
INSERT INTO products (id, name, category)
VALUES ($1, $2, $3)
RETURNING id`

func (p *PgStore) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	created := *product
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	if err := p.db.QueryRow(ctx, createProductSQL, created.ID, created.Name, created.Category).Scan(&created.ID); err != nil {
		return nil, apperrors.Upstream(apperrors.ErrCreateProduct, err)
	}
	return &created, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	return nil
}
