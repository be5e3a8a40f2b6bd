// Package memory holds process-local repositories used for development and
// tests when no external store is configured.
package memory

import (
	"context"
	"sync"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

// CartStorage keeps encoded carts in a map.
type CartStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ repository.CartStorage = (*CartStorage)(nil)

func NewCartStorage() *CartStorage {
	return &CartStorage{blobs: make(map[string][]byte)}
}

func (s *CartStorage) Save(_ context.Context, key string, items []entity.LineItem) error {
	data, err := repository.EncodeCart(items)
	if err != nil {
		return err
	}
	s.Put(key, data)
	return nil
}

func (s *CartStorage) Load(_ context.Context, key string) ([]entity.LineItem, error) {
	data, ok := s.Raw(key)
	if !ok {
		return nil, nil
	}
	return repository.DecodeCart(data)
}

// Put stores raw bytes under key.
func (s *CartStorage) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
}

// Raw returns the bytes stored under key.
func (s *CartStorage) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return append([]byte(nil), data...), ok
}
