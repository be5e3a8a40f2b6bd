// Package payment authorizes order payments.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
)

var ErrDeclined = errors.New("payment declined")

// Gateway authorizes the payment of a created order.
type Gateway interface {
	Authorize(ctx context.Context, order *entity.OrderRecord) error
}

// Simulator approves every order except card payments whose last four digits
// are listed in DeclinedCards. Cash on delivery is always approved.
type Simulator struct {
	DeclinedCards map[string]bool
}

var _ Gateway = (*Simulator)(nil)

// NewSimulator returns a Simulator that declines the conventional test card
// ending in 0002.
func NewSimulator() *Simulator {
	return &Simulator{DeclinedCards: map[string]bool{"0002": true}}
}

func (s *Simulator) Authorize(ctx context.Context, order *entity.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := order.Payment
	if p.Method == entity.PaymentCard && s.DeclinedCards[p.CardLast4] {
		return fmt.Errorf("%w: card ending %s", ErrDeclined, p.CardLast4)
	}
	slog.Info("Payment: authorized", "order_id", order.ID, "method", p.Method, "amount", order.Pricing.Total.StringFixed(2))
	return nil
}
