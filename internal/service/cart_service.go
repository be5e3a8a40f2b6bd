package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/metric"
	"github.com/chiragjain10/avrcraft-sub000/internal/pricing"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

const saveTimeout = 5 * time.Second

// CartStore owns the cart of one session. Every mutation is applied in
// memory first and then handed to a background writer; storage failures are
// logged and never reach the caller. Pending writes are coalesced so that
// only the newest cart is saved.
type CartStore struct {
	key     string
	storage repository.CartStorage
	rules   pricing.Rules

	mu     sync.Mutex
	cart   entity.Cart
	closed bool

	pending   chan []entity.LineItem
	inflight  sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// NewCartStore rehydrates the cart saved under key and starts the writer.
// A missing, unreadable or corrupt entry yields an empty cart.
func NewCartStore(ctx context.Context, key string, storage repository.CartStorage, rules pricing.Rules) *CartStore {
	s := &CartStore{
		key:     key,
		storage: storage,
		rules:   rules,
		pending: make(chan []entity.LineItem, 1),
		done:    make(chan struct{}),
	}
	s.cart = s.rehydrate(ctx)
	go s.writeLoop()
	return s
}

func (s *CartStore) rehydrate(ctx context.Context) entity.Cart {
	items, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, repository.ErrCorruptCart):
		slog.Warn("Cart: discarding corrupt stored cart", "key", s.key, "err", err)
		metric.CartRehydrateTotal.WithLabelValues("corrupt").Inc()
		return entity.Cart{}
	case err != nil:
		slog.Error("Cart: failed to load stored cart, starting empty", "key", s.key, "err", err)
		metric.CartRehydrateTotal.WithLabelValues("error").Inc()
		return entity.Cart{}
	case len(items) == 0:
		metric.CartRehydrateTotal.WithLabelValues("empty").Inc()
		return entity.Cart{}
	}
	metric.CartRehydrateTotal.WithLabelValues("ok").Inc()
	cart := entity.NewCart(items...)
	slog.Debug("Cart: rehydrated", "key", s.key, "items", cart.Len())
	return cart
}

// AddItem adds one unit of p. Products without an id or without stock are
// ignored, as are additions past the item's quantity cap.
func (s *CartStore) AddItem(p entity.Product) {
	item, err := entity.NewLineItem(p)
	if err != nil {
		slog.Debug("Cart: ignoring product", "key", s.key, "product_id", p.ID, "err", err)
		return
	}
	s.dispatch(entity.AddItem{Item: item})
}

// RemoveItem deletes the line item with id. Unknown ids are a no-op.
func (s *CartStore) RemoveItem(id string) {
	s.dispatch(entity.RemoveItem{ID: id})
}

// UpdateQuantity sets the quantity of id, clamped to the item's cap. A
// quantity below 1 removes the item.
func (s *CartStore) UpdateQuantity(id string, quantity int) {
	s.dispatch(entity.UpdateQuantity{ID: id, Quantity: quantity})
}

// Clear empties the cart.
func (s *CartStore) Clear() {
	s.dispatch(entity.ClearCart{})
}

func (s *CartStore) dispatch(a entity.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.cart.Apply(a)
	if err != nil {
		slog.Error("Cart: failed to apply action", "key", s.key, "action", a.ActionType(), "err", err)
		return
	}
	s.cart = next
	metric.CartMutationsTotal.WithLabelValues(a.ActionType()).Inc()
	s.enqueue(next.Items())
}

// enqueue replaces any unsaved cart with items. Callers hold mu, which makes
// this the only sender, so the send never blocks. The counter is raised before
// a drained write is released so it never reaches zero while one is queued.
func (s *CartStore) enqueue(items []entity.LineItem) {
	if s.closed {
		slog.Warn("Cart: store closed, change not persisted", "key", s.key)
		return
	}
	s.inflight.Add(1)
	select {
	case <-s.pending:
		s.inflight.Done()
	default:
	}
	s.pending <- items
}

func (s *CartStore) writeLoop() {
	defer close(s.done)
	for items := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.storage.Save(ctx, s.key, items); err != nil {
			slog.Error("Cart: failed to persist cart", "key", s.key, "err", err)
			metric.CartPersistTotal.WithLabelValues("error").Inc()
		} else {
			metric.CartPersistTotal.WithLabelValues("success").Inc()
		}
		cancel()
		s.inflight.Done()
	}
}

// Flush blocks until every mutation made so far has been written.
func (s *CartStore) Flush() {
	s.inflight.Wait()
}

// Close writes the last pending cart and stops the writer.
func (s *CartStore) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.pending)
		s.mu.Unlock()
	})
	<-s.done
}

// Cart returns the current immutable cart value.
func (s *CartStore) Cart() entity.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Items returns a copy of the line items in insertion order.
func (s *CartStore) Items() []entity.LineItem {
	return s.Cart().Items()
}

// Total returns the cart subtotal.
func (s *CartStore) Total() decimal.Decimal {
	return s.Cart().Subtotal()
}

// ItemCount returns the sum of quantities.
func (s *CartStore) ItemCount() int {
	return s.Cart().ItemCount()
}

// Rules returns the pricing rules the cart is priced with.
func (s *CartStore) Rules() pricing.Rules {
	return s.rules
}

// Breakdown prices the cart for method.
func (s *CartStore) Breakdown(method entity.PaymentMethod) entity.PricingBreakdown {
	return pricing.Compute(s.Items(), method, s.rules)
}
