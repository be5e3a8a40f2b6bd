package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
)

// CartKey is the storage namespace of persisted carts.
const CartKey = "avr_craft_cart"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrCorruptCart     = errors.New("stored cart is corrupt")
)

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// CreateOrder stores a new order and returns its server-assigned id.
	CreateOrder(ctx context.Context, order *entity.OrderRecord) (string, error)
	UpdateOrderStatus(ctx context.Context, order *entity.OrderRecord) error
	FindRecent(ctx context.Context, limit int) ([]entity.OrderRecord, error)
}

// ErrVersionConflict is returned when an event append races another writer.
var ErrVersionConflict = errors.New("order event version conflict")

// OrderEventLog is the append-only lifecycle history of orders.
type OrderEventLog interface {
	// Append stores events after expectedVersion, the number of events already
	// recorded for the order.
	Append(ctx context.Context, orderID string, expectedVersion int, events ...entity.Event) error
	History(ctx context.Context, orderID string) ([]entity.EventRecord, error)
}

// CartStorage is the durable key-value slot holding a session's cart.
type CartStorage interface {
	Save(ctx context.Context, key string, items []entity.LineItem) error
	// Load returns nil items and no error when nothing is stored under key.
	Load(ctx context.Context, key string) ([]entity.LineItem, error)
}

// CartKeyFor returns the storage key for a session. The empty session maps
// to the bare namespace key.
func CartKeyFor(sessionID string) string {
	if sessionID == "" {
		return CartKey
	}
	return CartKey + ":" + sessionID
}

// EncodeCart serializes items into the persisted JSON array format.
func EncodeCart(items []entity.LineItem) ([]byte, error) {
	if items == nil {
		items = []entity.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart: %w", err)
	}
	return data, nil
}

// DecodeCart parses a persisted cart. Malformed data yields ErrCorruptCart.
func DecodeCart(data []byte) ([]entity.LineItem, error) {
	var items []entity.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	return items, nil
}
