package ledger

import (
	"context"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

func (l *Ledger) loadInventory(ctx context.Context) ([]models.MenuItem, error) {
	items, ok, err := storage.LoadJSON[[]models.MenuItem](ctx, l.Store, storage.KeyInventory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultMenuItems(), nil
	}
	return items, nil
}

func (l *Ledger) GetInventory(ctx context.Context) ([]models.MenuItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadInventory(ctx)
}

func (l *Ledger) GetMenuItem(ctx context.Context, itemID string) (models.MenuItem, bool, error) {
	items, err := l.GetInventory(ctx)
	if err != nil {
		return models.MenuItem{}, false, err
	}
	for _, it := range items {
		if it.ID == itemID {
			return it, true, nil
		}
	}
	return models.MenuItem{}, false, nil
}

// SaveInventory replaces the persisted inventory wholesale. Negative stock is clamped to zero.
func (l *Ledger) SaveInventory(ctx context.Context, items []models.MenuItem) error {
	defer l.lock(ctx)()

	normalised := make([]models.MenuItem, len(items))
	for i, it := range items {
		normalised[i] = models.NewMenuItem(it.ID, it.Name, it.Price, it.Category, it.Description, it.Stock)
	}
	if err := storage.SaveJSON(ctx, l.Store, storage.KeyInventory, normalised); err != nil {
		return err
	}
	l.publish(ctx, mykafka.TopicInventory, "inventory", map[string]any{
		"type":  "inventory_replaced",
		"items": len(normalised),
	})
	return nil
}

// UpdateStock takes quantity units of itemID out of stock, flooring at zero.
// Unknown items are ignored.
func (l *Ledger) UpdateStock(ctx context.Context, itemID string, quantity int) error {
	return l.adjustStock(ctx, itemID, "stock_decreased", func(stock int) int {
		return max(0, stock-quantity)
	})
}

// RestoreStock puts quantity units back, e.g. to compensate a failed order.
func (l *Ledger) RestoreStock(ctx context.Context, itemID string, quantity int) error {
	return l.adjustStock(ctx, itemID, "stock_restored", func(stock int) int {
		return stock + quantity
	})
}

// SetStock overwrites the stock count of one item, clamped at zero.
func (l *Ledger) SetStock(ctx context.Context, itemID string, stock int) error {
	return l.adjustStock(ctx, itemID, "stock_set", func(int) int {
		return max(0, stock)
	})
}

func (l *Ledger) adjustStock(ctx context.Context, itemID, eventType string, next func(int) int) error {
	defer l.lock(ctx)()

	items, err := l.loadInventory(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range items {
		if items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		logging.FromContext(ctx).Debug("stock_item_unknown", "item_id", itemID, "op", eventType)
		return nil
	}

	items[idx].Stock = next(items[idx].Stock)
	if err := storage.SaveJSON(ctx, l.Store, storage.KeyInventory, items); err != nil {
		return err
	}

	l.publish(ctx, mykafka.TopicInventory, itemID, map[string]any{
		"type":   eventType,
		"itemID": itemID,
		"stock":  items[idx].Stock,
	})
	return nil
}
