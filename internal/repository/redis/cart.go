// Package redis persists carts in Redis as JSON strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

type cartStorage struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewCartStorage creates a CartStorage on client. A zero ttl keeps carts
// until they are overwritten.
func NewCartStorage(client goredis.UniversalClient, ttl time.Duration) repository.CartStorage {
	return &cartStorage{client: client, ttl: ttl}
}

func (s *cartStorage) Save(ctx context.Context, key string, items []entity.LineItem) error {
	data, err := repository.EncodeCart(items)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", key, err)
	}
	return nil
}

func (s *cartStorage) Load(ctx context.Context, key string) ([]entity.LineItem, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
	}
	return repository.DecodeCart(data)
}
