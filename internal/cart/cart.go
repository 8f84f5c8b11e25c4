// Package cart holds a customer's cart and keeps its totals current.
package cart

import (
	"fmt"
	"strings"
	"sync"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pricing"
)

// Listener receives recomputed totals after each mutation.
type Listener func(pricing.Totals)

// Cart is a mutable cart whose mutations always go through its methods.
type Cart struct {
	engine *pricing.Engine

	mu        sync.Mutex
	items     []model.CartItem
	selection pricing.Selection
	totals    pricing.Totals
	listeners []Listener
}

// New creates an empty cart priced by engine.
func New(engine *pricing.Engine, selection pricing.Selection) *Cart {
	c := &Cart{engine: engine, selection: selection}
	c.totals = engine.Compute(nil, selection)
	return c
}

// FromItems builds a cart by adding each item in order.
func FromItems(engine *pricing.Engine, selection pricing.Selection, items []model.CartItem) (*Cart, error) {
	c := New(engine, selection)
	for i, item := range items {
		if err := c.Add(item); err != nil {
			return nil, fmt.Errorf("cart item %d: %w", i, err)
		}
	}
	return c, nil
}

// Subscribe registers a listener for totals updates.
func (c *Cart) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Add appends an item, merging it into an identical existing line.
func (c *Cart) Add(item model.CartItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(item); err != nil {
		return err
	}
	return c.mutate(func() error {
		for i := range c.items {
			if c.items[i].SameLine(item) {
				c.items[i].Quantity += item.Quantity
				return nil
			}
		}
		c.items = append(c.items, item)
		return nil
	})
}

// UpdateQuantity sets the quantity of line index.
func (c *Cart) UpdateQuantity(index, quantity int) error {
	if quantity < 1 {
		return domainErrors.Invalid("quantity", "must be at least 1")
	}
	return c.mutate(func() error {
		if index < 0 || index >= len(c.items) {
			return domainErrors.Invalid("index", "out of range")
		}
		c.items[index].Quantity = quantity
		return nil
	})
}

// Remove deletes line index.
func (c *Cart) Remove(index int) error {
	return c.mutate(func() error {
		if index < 0 || index >= len(c.items) {
			return domainErrors.Invalid("index", "out of range")
		}
		c.items = append(c.items[:index], c.items[index+1:]...)
		return nil
	})
}

// Clear empties the cart, as after a successful order.
func (c *Cart) Clear() {
	_ = c.mutate(func() error {
		c.items = nil
		return nil
	})
}

// Select changes discount, delivery or payment choices.
func (c *Cart) Select(selection pricing.Selection) {
	_ = c.mutate(func() error {
		c.selection = selection
		return nil
	})
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Selection returns current pricing choices.
func (c *Cart) Selection() pricing.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Totals returns the latest computed totals.
func (c *Cart) Totals() pricing.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

func (c *Cart) mutate(fn func() error) error {
	c.mu.Lock()
	if err := fn(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.totals = c.engine.Compute(c.items, c.selection)
	totals := c.totals
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l(totals)
	}
	return nil
}

func validateItem(item model.CartItem) error {
	switch {
	case item.Name == "":
		return domainErrors.Invalid("name", "is required")
	case item.UnitPrice < 0:
		return domainErrors.Invalid("price", "must not be negative")
	case item.Quantity < 1:
		return domainErrors.Invalid("quantity", "must be at least 1")
	}
	return nil
}
