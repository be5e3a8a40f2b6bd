package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
)

func apply(t *testing.T, c entity.Cart, actions ...entity.Action) entity.Cart {
	t.Helper()
	for _, a := range actions {
		var err error
		c, err = c.Apply(a)
		require.NoError(t, err)
	}
	return c
}

func item(t *testing.T, id string, price float64, stock int) entity.LineItem {
	t.Helper()
	li, err := entity.NewLineItem(entity.Product{ID: id, Name: "Item " + id, Price: price, Stock: stock})
	require.NoError(t, err)
	return li
}

type unknownAction struct{}

func (unknownAction) ActionType() string { return "Unknown" }

func TestCart_AddItem(t *testing.T) {
	t.Run("appends new item with quantity 1", func(t *testing.T) {
		c := apply(t, entity.Cart{}, entity.AddItem{Item: item(t, "p1", 1000, 5)})

		require.Equal(t, 1, c.Len())
		got, ok := c.Find("p1")
		require.True(t, ok)
		assert.Equal(t, 1, got.Quantity)
	})

	t.Run("existing id increments quantity instead of appending", func(t *testing.T) {
		p1 := item(t, "p1", 1000, 5)
		c := apply(t, entity.Cart{}, entity.AddItem{Item: p1}, entity.AddItem{Item: p1})

		require.Equal(t, 1, c.Len())
		got, _ := c.Find("p1")
		assert.Equal(t, 2, got.Quantity)
	})

	t.Run("stock of one caps quantity at one", func(t *testing.T) {
		p1 := item(t, "p1", 1000, 1)
		c := apply(t, entity.Cart{}, entity.AddItem{Item: p1}, entity.AddItem{Item: p1})

		require.Equal(t, 1, c.Len())
		got, _ := c.Find("p1")
		assert.Equal(t, 1, got.Quantity)
	})

	t.Run("never exceeds ten even with large stock", func(t *testing.T) {
		p1 := item(t, "p1", 10, 100)
		c := entity.Cart{}
		for i := 0; i < 15; i++ {
			c = apply(t, c, entity.AddItem{Item: p1})
		}
		got, _ := c.Find("p1")
		assert.Equal(t, entity.MaxLineQuantity, got.Quantity)
	})

	t.Run("out of stock item is ignored", func(t *testing.T) {
		c := apply(t, entity.Cart{}, entity.AddItem{Item: entity.LineItem{ID: "p1", Price: 10, Stock: 0}})
		assert.True(t, c.IsEmpty())
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		c := apply(t, entity.Cart{},
			entity.AddItem{Item: item(t, "b", 1, 5)},
			entity.AddItem{Item: item(t, "a", 1, 5)},
			entity.AddItem{Item: item(t, "b", 1, 5)},
		)
		items := c.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[0].ID)
		assert.Equal(t, "a", items[1].ID)
	})
}

func TestCart_RemoveItemIsIdempotent(t *testing.T) {
	c := apply(t, entity.Cart{},
		entity.AddItem{Item: item(t, "p1", 1000, 5)},
		entity.AddItem{Item: item(t, "p2", 250, 5)},
	)

	once := apply(t, c, entity.RemoveItem{ID: "p1"})
	twice := apply(t, once, entity.RemoveItem{ID: "p1"})

	assert.Equal(t, once.Items(), twice.Items())
	assert.Equal(t, 1, twice.Len())

	absent := apply(t, c, entity.RemoveItem{ID: "missing"})
	assert.Equal(t, c.Items(), absent.Items())
}

func TestCart_UpdateQuantityClamps(t *testing.T) {
	for _, stock := range []int{1, 3, 10, 50} {
		base := apply(t, entity.Cart{}, entity.AddItem{Item: item(t, "p1", 100, stock)})
		limit := min(stock, entity.MaxLineQuantity)

		for q := -3; q <= 60; q++ {
			c := apply(t, base, entity.UpdateQuantity{ID: "p1", Quantity: q})
			got, ok := c.Find("p1")
			if q < 1 {
				assert.False(t, ok, "stock=%d q=%d should remove", stock, q)
				continue
			}
			require.True(t, ok, "stock=%d q=%d", stock, q)
			assert.GreaterOrEqual(t, got.Quantity, 1)
			assert.LessOrEqual(t, got.Quantity, limit)
			if q <= limit {
				assert.Equal(t, q, got.Quantity)
			}
		}
	}
}

func TestCart_UpdateQuantityUnknownIDIsNoop(t *testing.T) {
	c := apply(t, entity.Cart{}, entity.AddItem{Item: item(t, "p1", 100, 5)})
	after := apply(t, c, entity.UpdateQuantity{ID: "nope", Quantity: 3})
	assert.Equal(t, c.Items(), after.Items())
}

func TestCart_ApplyDoesNotMutateReceiver(t *testing.T) {
	c := apply(t, entity.Cart{}, entity.AddItem{Item: item(t, "p1", 100, 5)})
	before := c.Items()

	_ = apply(t, c,
		entity.AddItem{Item: item(t, "p1", 100, 5)},
		entity.UpdateQuantity{ID: "p1", Quantity: 4},
		entity.AddItem{Item: item(t, "p2", 100, 5)},
		entity.ClearCart{},
	)

	assert.Equal(t, before, c.Items())
}

func TestCart_DerivedTotals(t *testing.T) {
	c := apply(t, entity.Cart{},
		entity.AddItem{Item: item(t, "p1", 1000, 5)},
		entity.AddItem{Item: item(t, "p1", 1000, 5)},
		entity.AddItem{Item: item(t, "p2", 250, 5)},
	)

	assert.True(t, decimal.NewFromInt(2250).Equal(c.Subtotal()), c.Subtotal().String())
	assert.Equal(t, 3, c.ItemCount())

	cleared := apply(t, c, entity.ClearCart{})
	assert.True(t, cleared.IsEmpty())
	assert.True(t, cleared.Subtotal().IsZero())
	assert.Zero(t, cleared.ItemCount())
}

func TestCart_UnknownAction(t *testing.T) {
	_, err := entity.Cart{}.Apply(unknownAction{})
	assert.Error(t, err)
}

func TestNewCart_Normalizes(t *testing.T) {
	c := entity.NewCart(
		entity.LineItem{ID: "p1", Price: 100, Quantity: 40, Stock: 3},
		entity.LineItem{ID: "", Price: 5, Quantity: 1},
		entity.LineItem{ID: "p2", Price: -10, Quantity: 0},
		entity.LineItem{ID: "p3", Price: -10, Quantity: 2},
		entity.LineItem{ID: "p1", Price: 1, Quantity: 1, Stock: 3},
		entity.LineItem{ID: "p4", Price: 1, Quantity: 25},
	)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "p3", items[1].ID)
	assert.Zero(t, items[1].Price)
	assert.Equal(t, "p4", items[2].ID)
	assert.Equal(t, entity.MaxLineQuantity, items[2].Quantity)
}

func TestNewLineItem_Validation(t *testing.T) {
	_, err := entity.NewLineItem(entity.Product{ID: "  ", Stock: 3})
	assert.ErrorIs(t, err, entity.ErrProductIDRequired)

	_, err = entity.NewLineItem(entity.Product{ID: "p1", Stock: 0})
	assert.ErrorIs(t, err, entity.ErrOutOfStock)

	li, err := entity.NewLineItem(entity.Product{ID: "p1", Price: -4, Stock: 2, Author: "A", ImageURL: "img"})
	require.NoError(t, err)
	assert.Zero(t, li.Price)
	assert.Equal(t, 1, li.Quantity)
	assert.Equal(t, "A", li.Author)
	assert.Equal(t, "img", li.ImageURL)
}
