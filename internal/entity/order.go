package entity

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order record.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusFailed    OrderStatus = "failed"
)

// OrderRecord is the snapshot handed to the order collaborator on checkout.
type OrderRecord struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id,omitempty"`
	Email           string            `json:"email,omitempty"`
	Items           []LineItem        `json:"items"`
	ShippingAddress Address           `json:"shipping_address"`
	BillingAddress  Address           `json:"billing_address"`
	Phone           string            `json:"phone,omitempty"`
	Payment         PaymentDescriptor `json:"payment"`
	Pricing         PricingBreakdown  `json:"pricing"`
	Status          OrderStatus       `json:"status"`
	FailureReason   string            `json:"failure_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ApplyEvent moves the order through its lifecycle.
func (o *OrderRecord) ApplyEvent(e Event) error {
	switch e := e.(type) {
	case OrderPlaced:
		o.Status = StatusPending
		if o.CreatedAt.IsZero() {
			o.CreatedAt = e.PlacedAt
		}
		o.UpdatedAt = e.PlacedAt
	case OrderConfirmed:
		if o.Status != StatusPending {
			return fmt.Errorf("cannot confirm order %s in status %s", o.ID, o.Status)
		}
		o.Status = StatusConfirmed
		o.UpdatedAt = e.ConfirmedAt
	case OrderFailed:
		if o.Status != StatusPending {
			return fmt.Errorf("cannot fail order %s in status %s", o.ID, o.Status)
		}
		o.Status = StatusFailed
		o.FailureReason = e.Reason
		o.UpdatedAt = e.FailedAt
	default:
		return fmt.Errorf("unknown event type for OrderRecord: %s", e.EventType())
	}
	return nil
}
