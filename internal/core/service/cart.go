package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
)

// A Cart holds identifier-keyed line items and writes the whole cart
// through the store on every mutation. Lines keep insertion order.
type Cart struct {
	mu    sync.Mutex
	store port.CartStore
	lines []domain.CartLine
}

// NewCart loads previously stored contents. Missing or corrupt data
// falls back to an empty cart and is never an error.
func NewCart(ctx context.Context, store port.CartStore) *Cart {
	const op = "NewCart"
	log := slog.With("op", op)

	c := &Cart{store: store}

	lines, err := store.LoadCart(ctx)
	if err != nil {
		log.Warn("failed to load stored cart, starting empty", "err", err)
		return c
	}
	c.lines = lines
	return c
}

// A CartLineOpt carries the shopper's variant selection onto the line.
type CartLineOpt func(*domain.CartLine)

func WithSize(size string) CartLineOpt {
	return func(l *domain.CartLine) { l.Size = size }
}

func WithColor(color string) CartLineOpt {
	return func(l *domain.CartLine) { l.Color = color }
}

// Add merges qty into the existing line for the product or appends a new
// line with a snapshot of the product. Never duplicates a line: the latest
// size and colour selection rides on the line instead of splitting it.
func (c *Cart) Add(ctx context.Context, p domain.Product, qty int, opts ...CartLineOpt) error {
	const op = "Cart.Add"

	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := false
	for i := range c.lines {
		if c.lines[i].Product.ProductID == p.ProductID {
			c.lines[i].Quantity += qty
			for _, opt := range opts {
				opt(&c.lines[i])
			}
			merged = true
			break
		}
	}
	if !merged {
		line := domain.CartLine{Product: p, Quantity: qty}
		for _, opt := range opts {
			opt(&line)
		}
		c.lines = append(c.lines, line)
	}

	if err := c.persistLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remove deletes the line for the product; absent lines are a no-op.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	const op = "Cart.Remove"

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			if err := c.persistLocked(ctx); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}
	return nil
}

// SetQuantity sets the line quantity, clamped to a minimum of 1.
// Dropping to zero never removes the line: removal is explicit.
func (c *Cart) SetQuantity(ctx context.Context, productID string, qty int) error {
	const op = "Cart.SetQuantity"

	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Product.ProductID == productID {
			c.lines[i].Quantity = qty
			if err := c.persistLocked(ctx); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}
	return nil
}

// Clear empties the cart, as checkout completion does.
func (c *Cart) Clear(ctx context.Context) error {
	const op = "Cart.Clear"

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	if err := c.persistLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Line returns the line for the product, ok=false when absent.
func (c *Cart) Line(productID string) (domain.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lines {
		if l.Product.ProductID == productID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Total sums price*quantity over all lines, rounded to 2 decimal places.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, l := range c.lines {
		total += l.LineTotal()
	}
	return round2(total)
}

// ItemCount sums quantities, not distinct lines. Used for the badge.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) persistLocked(ctx context.Context) error {
	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return c.store.StoreCart(ctx, lines)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
