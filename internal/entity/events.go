package entity

import (
	"encoding/json"
	"time"
)

// Event represents a domain event published after an order changes state.
type Event interface {
	EventType() string
}

// Action represents a cart mutation handled by Cart.Apply.
type Action interface {
	ActionType() string
}

// AddItem adds one unit of Item to the cart.
type AddItem struct {
	Item LineItem
}

func (a AddItem) ActionType() string { return "AddItem" }

// RemoveItem deletes the line item with ID.
type RemoveItem struct {
	ID string
}

func (a RemoveItem) ActionType() string { return "RemoveItem" }

// UpdateQuantity replaces the stored quantity of the line item with ID.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

func (a UpdateQuantity) ActionType() string { return "UpdateQuantity" }

// ClearCart empties the cart.
type ClearCart struct{}

func (a ClearCart) ActionType() string { return "ClearCart" }

// OrderPlaced is emitted when an order record has been created.
type OrderPlaced struct {
	OrderID  string           `json:"order_id"`
	UserID   string           `json:"user_id,omitempty"`
	Items    []LineItem       `json:"items"`
	Pricing  PricingBreakdown `json:"pricing"`
	Method   PaymentMethod    `json:"payment_method"`
	PlacedAt time.Time        `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderConfirmed is emitted when the payment collaborator acknowledged the order.
type OrderConfirmed struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	Total       string    `json:"total"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func (e OrderConfirmed) EventType() string { return "OrderConfirmed" }

// OrderFailed is emitted when payment for a created order was declined.
type OrderFailed struct {
	OrderID  string    `json:"order_id"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func (e OrderFailed) EventType() string { return "OrderFailed" }

// EventRecord is one stored entry of an order's event history.
type EventRecord struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Version   int             `json:"version"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
