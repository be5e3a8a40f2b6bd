package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository/redis"
)

func setup(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, repository.CartStorage) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, redis.NewCartStorage(client, ttl)
}

func TestCartStorage_SaveLoad(t *testing.T) {
	_, storage := setup(t, 0)
	ctx := context.Background()

	items := []entity.LineItem{
		{ID: "prod-001", Name: "Madhubani Peacock Painting", Price: 2450, Quantity: 2, Stock: 4},
		{ID: "prod-005", Name: "Block Print Table Runner", Price: 749, Quantity: 1, Stock: 60},
	}
	require.NoError(t, storage.Save(ctx, "avr_craft_cart:s1", items))

	loaded, err := storage.Load(ctx, "avr_craft_cart:s1")
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestCartStorage_LoadMissing(t *testing.T) {
	_, storage := setup(t, 0)

	items, err := storage.Load(context.Background(), "avr_craft_cart:nobody")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestCartStorage_CorruptValue(t *testing.T) {
	mr, storage := setup(t, 0)
	require.NoError(t, mr.Set("avr_craft_cart", "{not json"))

	_, err := storage.Load(context.Background(), "avr_craft_cart")
	assert.ErrorIs(t, err, repository.ErrCorruptCart)
}

func TestCartStorage_EmptyCartIsArray(t *testing.T) {
	mr, storage := setup(t, 0)
	require.NoError(t, storage.Save(context.Background(), "avr_craft_cart", nil))

	raw, err := mr.Get("avr_craft_cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestCartStorage_TTL(t *testing.T) {
	mr, storage := setup(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, "avr_craft_cart:s1", []entity.LineItem{{ID: "a", Quantity: 1}}))

	assert.Equal(t, time.Hour, mr.TTL("avr_craft_cart:s1"))

	mr.FastForward(2 * time.Hour)
	items, err := storage.Load(ctx, "avr_craft_cart:s1")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestCartStorage_Unavailable(t *testing.T) {
	mr, storage := setup(t, 0)
	mr.Close()

	err := storage.Save(context.Background(), "avr_craft_cart", nil)
	assert.Error(t, err)
}
