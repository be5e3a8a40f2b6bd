package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *entity.OrderRecord) (string, error) {
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shipping address: %w", err)
	}
	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return "", fmt.Errorf("failed to marshal billing address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	p := order.Pricing
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, email, phone, shipping_address, billing_address,
			payment_method, card_last4, subtotal, shipping_cost, tax, cod_surcharge, total,
			status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		id, order.UserID, order.Email, order.Phone, shipping, billing,
		string(order.Payment.Method), order.Payment.CardLast4,
		p.Subtotal, p.ShippingCost, p.Tax, p.CODSurcharge, p.Total,
		string(order.Status), order.FailureReason, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, name, price, quantity) VALUES ($1, $2, $3, $4, $5)",
			id, item.ID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, order *entity.OrderRecord) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, failure_reason = $2, updated_at = $3 WHERE id = $4",
		string(order.Status), order.FailureReason, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]entity.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, email, phone, shipping_address, billing_address, payment_method,
			card_last4, subtotal, shipping_cost, tax, cod_surcharge, total, status,
			failure_reason, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.OrderRecord
	for rows.Next() {
		var (
			o                 entity.OrderRecord
			shipping, billing []byte
			method, status    string
		)
		err := rows.Scan(&o.ID, &o.UserID, &o.Email, &o.Phone, &shipping, &billing, &method,
			&o.Payment.CardLast4, &o.Pricing.Subtotal, &o.Pricing.ShippingCost, &o.Pricing.Tax,
			&o.Pricing.CODSurcharge, &o.Pricing.Total, &status, &o.FailureReason,
			&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address of order %s: %w", o.ID, err)
		}
		if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode billing address of order %s: %w", o.ID, err)
		}
		o.Payment.Method = entity.PaymentMethod(method)
		o.Status = entity.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	for i := range orders {
		items, err := r.findItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) findItems(ctx context.Context, orderID string) ([]entity.LineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, name, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var item entity.LineItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
