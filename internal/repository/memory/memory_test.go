package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository/memory"
)

func TestCartStorage_RoundTripAndCorruption(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewCartStorage()

	items, err := storage.Load(ctx, repository.CartKey)
	require.NoError(t, err)
	assert.Nil(t, items)

	want := []entity.LineItem{{ID: "prod-002", Name: "Terracotta Bell Vase", Price: 899, Quantity: 3, Stock: 25}}
	require.NoError(t, storage.Save(ctx, repository.CartKey, want))
	got, err := storage.Load(ctx, repository.CartKey)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	storage.Put(repository.CartKey, []byte("42"))
	_, err = storage.Load(ctx, repository.CartKey)
	assert.ErrorIs(t, err, repository.ErrCorruptCart)
}

func TestCartKeyFor(t *testing.T) {
	assert.Equal(t, "avr_craft_cart", repository.CartKeyFor(""))
	assert.Equal(t, "avr_craft_cart:abc", repository.CartKeyFor("abc"))
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	require.NoError(t, repo.Seed(ctx, repository.SeedProducts))
	require.NoError(t, repo.Seed(ctx, []entity.Product{{ID: "ignored"}}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(repository.SeedProducts))
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}

	p, err := repo.FindByID(ctx, "prod-003")
	require.NoError(t, err)
	assert.Equal(t, "Brass Diya Set", p.Name)

	_, err = repo.FindByID(ctx, "ignored")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := &entity.OrderRecord{Status: entity.StatusPending, CreatedAt: base}
	id1, err := repo.CreateOrder(ctx, first)
	require.NoError(t, err)
	assert.NotEmpty(t, id1)
	assert.Empty(t, first.ID, "caller's record is not mutated")

	id2, err := repo.CreateOrder(ctx, &entity.OrderRecord{Status: entity.StatusPending, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	require.NoError(t, repo.UpdateOrderStatus(ctx, &entity.OrderRecord{ID: id1, Status: entity.StatusFailed, FailureReason: "declined"}))
	assert.ErrorIs(t, repo.UpdateOrderStatus(ctx, &entity.OrderRecord{ID: "missing"}), repository.ErrOrderNotFound)

	recent, err := repo.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, id2, recent[0].ID)
	assert.Equal(t, entity.StatusFailed, recent[1].Status)
	assert.Equal(t, "declined", recent[1].FailureReason)

	recent, err = repo.FindRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestOrderEventLog(t *testing.T) {
	ctx := context.Background()
	log := memory.NewOrderEventLog()

	require.NoError(t, log.Append(ctx, "o1", 0, entity.OrderPlaced{OrderID: "o1"}))
	require.NoError(t, log.Append(ctx, "o1", 1, entity.OrderConfirmed{OrderID: "o1", Total: "2855"}))

	err := log.Append(ctx, "o1", 1, entity.OrderFailed{OrderID: "o1"})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	history, err := log.History(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "OrderPlaced", history[0].EventType)
	assert.Equal(t, 1, history[0].Version)
	assert.Equal(t, "OrderConfirmed", history[1].EventType)
	assert.Equal(t, 2, history[1].Version)
	assert.JSONEq(t, `{"order_id":"o1","total":"2855","confirmed_at":"0001-01-01T00:00:00Z"}`, string(history[1].Payload))
}
