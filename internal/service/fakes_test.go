package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/messaging"
	"github.com/chiragjain10/avrcraft-sub000/internal/payment"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

var errUnavailable = errors.New("storage unavailable")

// recordingStorage counts saves and can be told to fail.
type recordingStorage struct {
	mu      sync.Mutex
	saves   [][]entity.LineItem
	loadErr error
	saveErr error
	loaded  []entity.LineItem
}

var _ repository.CartStorage = &recordingStorage{}

func (s *recordingStorage) Save(_ context.Context, _ string, items []entity.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, items)
	return s.saveErr
}

func (s *recordingStorage) Load(context.Context, string) ([]entity.LineItem, error) {
	return s.loaded, s.loadErr
}

func (s *recordingStorage) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func (s *recordingStorage) last() []entity.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

type fakeGateway struct {
	err   error
	calls int
}

var _ payment.Gateway = &fakeGateway{}

func (g *fakeGateway) Authorize(context.Context, *entity.OrderRecord) error {
	g.calls++
	return g.err
}

type published struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

var _ messaging.Publisher = &fakePublisher{}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return p.err
}

func (p *fakePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var topics []string
	for _, e := range p.events {
		topics = append(topics, e.topic)
	}
	return topics
}

type failingOrderRepo struct {
	repository.OrderRepository
	createErr error
}

func (r *failingOrderRepo) CreateOrder(ctx context.Context, o *entity.OrderRecord) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	return r.OrderRepository.CreateOrder(ctx, o)
}
