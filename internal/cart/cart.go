// Package cart keeps the shopping cart of the current session in the same
// key-value store as the ledger.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidItem = errors.New("invalid cart item")
)

type Cart struct {
	Store storage.Store

	mu sync.Mutex
}

func (c *Cart) load(ctx context.Context) ([]models.CartItem, error) {
	items, _, err := storage.LoadJSON[[]models.CartItem](ctx, c.Store, storage.KeyCart)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

func (c *Cart) Items(ctx context.Context) ([]models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Add puts item in the cart, merging its quantity into an existing line for
// the same menu item.
func (c *Cart) Add(ctx context.Context, item models.CartItem) ([]models.CartItem, error) {
	if item.MenuItemID == "" {
		return nil, fmt.Errorf("menu item id is required: %w", ErrInvalidItem)
	}
	if item.Quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].MenuItemID == item.MenuItemID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	return items, storage.SaveJSON(ctx, c.Store, storage.KeyCart, items)
}

func (c *Cart) Remove(ctx context.Context, menuItemID string) ([]models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.removeLocked(ctx, items, menuItemID)
}

func (c *Cart) removeLocked(ctx context.Context, items []models.CartItem, menuItemID string) ([]models.CartItem, error) {
	out := items[:0]
	found := false
	for _, it := range items {
		if it.MenuItemID == menuItemID {
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		return nil, fmt.Errorf("cart item %q: %w", menuItemID, ErrNotFound)
	}
	return out, storage.SaveJSON(ctx, c.Store, storage.KeyCart, out)
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, menuItemID string, quantity int) ([]models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return c.removeLocked(ctx, items, menuItemID)
	}

	for i := range items {
		if items[i].MenuItemID == menuItemID {
			items[i].Quantity = quantity
			return items, storage.SaveJSON(ctx, c.Store, storage.KeyCart, items)
		}
	}
	return nil, fmt.Errorf("cart item %q: %w", menuItemID, ErrNotFound)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return storage.SaveJSON(ctx, c.Store, storage.KeyCart, []models.CartItem{})
}

func Total(items []models.CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum.InexactFloat64()
}

func ItemCount(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
