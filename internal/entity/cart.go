package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cart is an immutable, ordered set of line items keyed by product id.
// Mutations go through Apply, which returns a new Cart.
type Cart struct {
	items []LineItem
}

// NewCart builds a cart from previously persisted items. Entries without an
// id are dropped, duplicate ids keep the first occurrence, and quantities are
// clamped into [1, MaxQuantity]; entries with quantity below 1 are dropped.
func NewCart(items ...LineItem) Cart {
	seen := make(map[string]struct{}, len(items))
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		item.Price = normalizePrice(item.Price)
		item.Quantity = clamp(item.Quantity, 1, item.MaxQuantity())
		out = append(out, item)
	}
	return Cart{items: out}
}

// Items returns a copy of the line items in insertion order.
func (c Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct line items.
func (c Cart) Len() int { return len(c.items) }

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

// Find returns the line item with id.
func (c Cart) Find(id string) (LineItem, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Subtotal returns Σ price × quantity.
func (c Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.items)
}

// ItemCount returns Σ quantity.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Subtotal returns Σ price × quantity over items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Apply returns the cart that results from applying a. The receiver is never
// modified. Out-of-range input is clamped or ignored, never rejected.
func (c Cart) Apply(a Action) (Cart, error) {
	switch a := a.(type) {
	case AddItem:
		return c.addItem(a.Item), nil
	case RemoveItem:
		return c.removeItem(a.ID), nil
	case UpdateQuantity:
		return c.updateQuantity(a.ID, a.Quantity), nil
	case ClearCart:
		return Cart{}, nil
	default:
		return c, fmt.Errorf("unknown action type for Cart: %s", a.ActionType())
	}
}

func (c Cart) addItem(item LineItem) Cart {
	if item.ID == "" || item.Stock <= 0 {
		return c
	}
	i := c.indexOf(item.ID)
	if i < 0 {
		item.Quantity = 1
		item.Price = normalizePrice(item.Price)
		items := append(c.Items(), item)
		return Cart{items: items}
	}

	items := c.Items()
	existing := items[i]
	// The latest catalog stock wins; past the cap the increment is a no-op.
	existing.Stock = item.Stock
	existing.Quantity = min(existing.Quantity+1, existing.MaxQuantity())
	items[i] = existing
	return Cart{items: items}
}

func (c Cart) removeItem(id string) Cart {
	i := c.indexOf(id)
	if i < 0 {
		return c
	}
	items := make([]LineItem, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Cart{items: items}
}

func (c Cart) updateQuantity(id string, quantity int) Cart {
	i := c.indexOf(id)
	if i < 0 {
		return c
	}
	if quantity < 1 {
		return c.removeItem(id)
	}
	items := c.Items()
	items[i].Quantity = clamp(quantity, 1, items[i].MaxQuantity())
	return Cart{items: items}
}

func (c Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
