package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

type orderRepository struct {
	mu     sync.RWMutex
	orders map[string]entity.OrderRecord
}

// NewOrderRepository creates an in-memory OrderRepository.
func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{orders: make(map[string]entity.OrderRecord)}
}

func (r *orderRepository) CreateOrder(_ context.Context, order *entity.OrderRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *order
	stored.ID = uuid.NewString()
	stored.Items = append([]entity.LineItem(nil), order.Items...)
	r.orders[stored.ID] = stored
	return stored.ID, nil
}

func (r *orderRepository) UpdateOrderStatus(_ context.Context, order *entity.OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	stored.Status = order.Status
	stored.FailureReason = order.FailureReason
	stored.UpdatedAt = order.UpdatedAt
	r.orders[order.ID] = stored
	return nil
}

func (r *orderRepository) FindRecent(_ context.Context, limit int) ([]entity.OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]entity.OrderRecord, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

type orderEventLog struct {
	mu      sync.RWMutex
	streams map[string][]entity.EventRecord
}

// NewOrderEventLog creates an in-memory OrderEventLog.
func NewOrderEventLog() repository.OrderEventLog {
	return &orderEventLog{streams: make(map[string][]entity.EventRecord)}
}

func (l *orderEventLog) Append(_ context.Context, orderID string, expectedVersion int, events ...entity.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stream := l.streams[orderID]
	if len(stream) != expectedVersion {
		return fmt.Errorf("%w: expected version %d, got %d", repository.ErrVersionConflict, expectedVersion, len(stream))
	}

	now := time.Now().UTC()
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		stream = append(stream, entity.EventRecord{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Version:   len(stream) + 1,
			EventType: event.EventType(),
			Payload:   payload,
			CreatedAt: now,
		})
	}
	l.streams[orderID] = stream
	return nil
}

func (l *orderEventLog) History(_ context.Context, orderID string) ([]entity.EventRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]entity.EventRecord(nil), l.streams[orderID]...), nil
}
