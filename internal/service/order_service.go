package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chiragjain10/avrcraft-sub000/internal/checkout"
	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/messaging"
	"github.com/chiragjain10/avrcraft-sub000/internal/metric"
	"github.com/chiragjain10/avrcraft-sub000/internal/payment"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

var ErrEmptyOrder = errors.New("order must have at least one item")

// OrderService creates orders from checkout submissions and authorizes
// their payment.
type OrderService struct {
	orderRepo repository.OrderRepository
	eventLog  repository.OrderEventLog
	payments  payment.Gateway
	publisher messaging.Publisher
	now       func() time.Time
}

var _ checkout.Submitter = (*OrderService)(nil)

func NewOrderService(
	orderRepo repository.OrderRepository,
	eventLog repository.OrderEventLog,
	payments payment.Gateway,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		eventLog:  eventLog,
		payments:  payments,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetRecentOrders returns the latest orders.
func (s *OrderService) GetRecentOrders(ctx context.Context, limit int) ([]entity.OrderRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orderRepo.FindRecent(ctx, limit)
}

// GetOrderHistory returns the lifecycle events recorded for an order.
func (s *OrderService) GetOrderHistory(ctx context.Context, orderID string) ([]entity.EventRecord, error) {
	return s.eventLog.History(ctx, orderID)
}

// SubmitOrder records a pending order, authorizes its payment and marks it
// confirmed. Any error means the customer was not charged and may retry.
func (s *OrderService) SubmitOrder(ctx context.Context, sub checkout.Submission) (*entity.OrderRecord, error) {
	if len(sub.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	slog.Info("Service: Placing order", "user_id", sub.UserID, "items", len(sub.Items), "method", sub.Form.Payment.Method)

	form := sub.Form
	order := &entity.OrderRecord{
		UserID:          sub.UserID,
		Email:           form.Shipping.Email,
		Phone:           form.Shipping.Phone,
		Items:           append([]entity.LineItem(nil), sub.Items...),
		ShippingAddress: form.Shipping.PostalAddress(),
		BillingAddress:  form.BillingAddress(),
		Payment:         form.Payment.Descriptor(),
		Pricing:         sub.Pricing,
	}

	placed := entity.OrderPlaced{
		UserID:   sub.UserID,
		Items:    order.Items,
		Pricing:  order.Pricing,
		Method:   order.Payment.Method,
		PlacedAt: s.now(),
	}
	if err := order.ApplyEvent(placed); err != nil {
		return nil, err
	}

	id, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		metric.OrdersTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = id
	placed.OrderID = id
	s.record(ctx, id, 0, placed)
	s.publish(ctx, messaging.TopicOrdersPlaced, id, placed)

	if err := s.payments.Authorize(ctx, order); err != nil {
		s.fail(ctx, order, err)
		return nil, fmt.Errorf("payment failed for order %s: %w", id, err)
	}

	confirmed := entity.OrderConfirmed{
		OrderID:     id,
		UserID:      order.UserID,
		Email:       order.Email,
		Total:       order.Pricing.Total.StringFixed(2),
		ConfirmedAt: s.now(),
	}
	if err := order.ApplyEvent(confirmed); err != nil {
		return nil, err
	}
	// Payment is captured at this point; the status write is best effort.
	if err := s.orderRepo.UpdateOrderStatus(ctx, order); err != nil {
		slog.Error("Failed to record order confirmation", "order_id", id, "err", err)
	}
	s.record(ctx, id, 1, confirmed)
	s.publish(ctx, messaging.TopicOrdersConfirmed, id, confirmed)

	metric.OrdersTotal.WithLabelValues(string(entity.StatusConfirmed)).Inc()
	metric.OrderValue.Observe(order.Pricing.Total.InexactFloat64())
	slog.Info("Order confirmed", "order_id", id, "total", confirmed.Total)
	return order, nil
}

func (s *OrderService) fail(ctx context.Context, order *entity.OrderRecord, cause error) {
	failed := entity.OrderFailed{OrderID: order.ID, Reason: cause.Error(), FailedAt: s.now()}
	metric.OrdersTotal.WithLabelValues(string(entity.StatusFailed)).Inc()
	if err := order.ApplyEvent(failed); err != nil {
		slog.Error("Failed to apply OrderFailed", "order_id", order.ID, "err", err)
		return
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, order); err != nil {
		slog.Error("Failed to record order failure", "order_id", order.ID, "err", err)
	}
	s.record(ctx, order.ID, 1, failed)
	s.publish(ctx, messaging.TopicOrdersFailed, order.ID, failed)
}

func (s *OrderService) record(ctx context.Context, orderID string, version int, event entity.Event) {
	if err := s.eventLog.Append(ctx, orderID, version, event); err != nil {
		slog.Error("Failed to append order event", "order_id", orderID, "event", event.EventType(), "err", err)
	}
}

func (s *OrderService) publish(ctx context.Context, topic, key string, event entity.Event) {
	if err := s.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.Error("Failed to publish event", "topic", topic, "event", event.EventType(), "err", err)
		metric.EventsPublishedTotal.WithLabelValues(topic, "error").Inc()
		return
	}
	metric.EventsPublishedTotal.WithLabelValues(topic, "success").Inc()
}
