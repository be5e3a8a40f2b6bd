package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chiragjain10/avrcraft-sub000/internal/checkout"
	"github.com/chiragjain10/avrcraft-sub000/internal/metric"
	"github.com/chiragjain10/avrcraft-sub000/internal/pricing"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

// Session is the cart and checkout flow of one shopper.
type Session struct {
	ID       string
	Cart     *CartStore
	Checkout *checkout.Machine

	lastSeen time.Time // guarded by Sessions.mu
}

// Sessions lazily creates one Session per id and evicts sessions that have
// gone idle. An evicted cart is flushed to storage and rehydrated on the
// next Get.
type Sessions struct {
	storage   repository.CartStorage
	submitter checkout.Submitter
	rules     pricing.Rules

	mu       sync.Mutex
	sessions map[string]*Session
	// closing holds ids whose evicted cart is still being flushed.
	closing map[string]chan struct{}
}

func NewSessions(storage repository.CartStorage, submitter checkout.Submitter, rules pricing.Rules) *Sessions {
	return &Sessions{
		storage:   storage,
		submitter: submitter,
		rules:     rules,
		sessions:  make(map[string]*Session),
		closing:   make(map[string]chan struct{}),
	}
}

// Get returns the session for id, rehydrating its cart on first use. The
// cart is loaded without holding the registry lock.
func (s *Sessions) Get(ctx context.Context, id string) *Session {
	for {
		s.mu.Lock()
		if sess, ok := s.sessions[id]; ok {
			sess.lastSeen = time.Now()
			s.mu.Unlock()
			return sess
		}
		flushing, evicting := s.closing[id]
		s.mu.Unlock()
		if !evicting {
			break
		}
		<-flushing
	}

	cart := NewCartStore(ctx, repository.CartKeyFor(id), s.storage, s.rules)

	s.mu.Lock()
	sess, raced := s.sessions[id]
	if !raced {
		sess = &Session{
			ID:       id,
			Cart:     cart,
			Checkout: checkout.NewMachine(cart, s.submitter),
		}
		s.sessions[id] = sess
		metric.ActiveSessions.Inc()
	}
	sess.lastSeen = time.Now()
	s.mu.Unlock()

	if raced {
		cart.Close()
	}
	return sess
}

// Len returns the number of sessions held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict closes every session unused for at least idle and returns how many
// were removed. Sessions with a submission in flight are kept.
func (s *Sessions) Evict(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	var evicted []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.Checkout.Processing() {
			continue
		}
		delete(s.sessions, id)
		s.closing[id] = make(chan struct{})
		evicted = append(evicted, sess)
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.Cart.Close()

		s.mu.Lock()
		close(s.closing[sess.ID])
		delete(s.closing, sess.ID)
		s.mu.Unlock()

		metric.ActiveSessions.Dec()
		metric.SessionsEvictedTotal.Inc()
	}
	if len(evicted) > 0 {
		slog.Debug("Sessions: evicted idle sessions", "count", len(evicted))
	}
	return len(evicted)
}

// Run evicts sessions idle for longer than idle every interval until ctx is
// cancelled.
func (s *Sessions) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict(idle)
		}
	}
}

// Close flushes and stops every session's cart writer.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.Cart.Close()
		delete(s.sessions, id)
		metric.ActiveSessions.Dec()
	}
}
