package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/verinum/verinum-api/internal/models"
)

// OrderRepository handles data access for number orders.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order and fills in generated fields.
func (r *OrderRepository) Create(ctx context.Context, order *models.NumberOrder) error {
	const q = `
        INSERT INTO number_orders
            (reference_id, provider, service, country_code, provider_order_id,
             phone_number, price_ngn, status, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		order.ReferenceID,
		order.Provider,
		order.Service,
		order.CountryCode,
		order.ProviderOrderID,
		order.PhoneNumber,
		order.PriceNGN,
		order.Status,
		order.ExpiresAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// GetByReferenceID returns one order by its public reference.
func (r *OrderRepository) GetByReferenceID(ctx context.Context, referenceID string) (*models.NumberOrder, error) {
	const q = `SELECT * FROM number_orders WHERE reference_id = $1 LIMIT 1`

	var order models.NumberOrder
	if err := r.db.GetContext(ctx, &order, q, referenceID); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus sets an order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status models.OrderStatus) error {
	const q = `UPDATE number_orders SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, status)
	return err
}

// SetCode stores a received SMS code and marks the order received.
func (r *OrderRepository) SetCode(ctx context.Context, id int, code string) error {
	const q = `
        UPDATE number_orders
        SET sms_code = $2, status = $3, updated_at = NOW()
        WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, code, models.OrderReceived)
	return err
}

// List returns recent orders, newest first.
func (r *OrderRepository) List(ctx context.Context, limit int) ([]models.NumberOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT * FROM number_orders ORDER BY created_at DESC LIMIT $1`

	var orders []models.NumberOrder
	if err := r.db.SelectContext(ctx, &orders, q, limit); err != nil {
		return nil, err
	}
	return orders, nil
}
