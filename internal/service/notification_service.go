package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/metric"
)

// Notifier delivers a customer-facing message.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, to, subject, body string) error {
	slog.Info("Notification sent", "to", to, "subject", subject, "body", body)
	return nil
}

// NotificationService reacts to order events from the broker.
type NotificationService struct {
	notifier Notifier
}

func NewNotificationService(notifier Notifier) *NotificationService {
	return &NotificationService{notifier: notifier}
}

// HandleOrderConfirmed sends the order confirmation to the customer.
func (s *NotificationService) HandleOrderConfirmed(ctx context.Context, payload []byte) error {
	var event entity.OrderConfirmed
	if err := json.Unmarshal(payload, &event); err != nil {
		metric.NotificationsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("failed to unmarshal OrderConfirmed event: %w", err)
	}
	if event.Email == "" {
		slog.Warn("Notification: confirmed order has no email", "order_id", event.OrderID)
		metric.NotificationsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	subject := fmt.Sprintf("Your AVR Craft order %s is confirmed", event.OrderID)
	body := fmt.Sprintf("Thank you for shopping with us. We received payment of ₹%s.", event.Total)
	if err := s.notifier.Notify(ctx, event.Email, subject, body); err != nil {
		metric.NotificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to notify %s: %w", event.OrderID, err)
	}
	metric.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}
