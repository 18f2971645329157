package ledger

import (
	"context"

	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

func (l *Ledger) loadOrders(ctx context.Context) ([]models.Order, error) {
	orders, _, err := storage.LoadJSON[[]models.Order](ctx, l.Store, storage.KeyOrders)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrders returns the order history, newest first.
func (l *Ledger) GetOrders(ctx context.Context) ([]models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadOrders(ctx)
}

// SaveOrder prepends order to the history.
func (l *Ledger) SaveOrder(ctx context.Context, order models.Order) error {
	defer l.lock(ctx)()

	orders, err := l.loadOrders(ctx)
	if err != nil {
		return err
	}

	orders = append([]models.Order{order}, orders...)
	if err := storage.SaveJSON(ctx, l.Store, storage.KeyOrders, orders); err != nil {
		return err
	}

	l.publish(ctx, mykafka.TopicOrders, order.ID, map[string]any{
		"type":    "order_saved",
		"orderID": order.ID,
		"status":  order.Status,
		"total":   order.Total,
	})
	return nil
}

// UpdateOrder merges the set fields of upd into the order with orderID. Unknown ids are ignored.
func (l *Ledger) UpdateOrder(ctx context.Context, orderID string, upd models.OrderUpdate) error {
	defer l.lock(ctx)()

	orders, err := l.loadOrders(ctx)
	if err != nil {
		return err
	}

	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		upd.Apply(&orders[i])
		if err := storage.SaveJSON(ctx, l.Store, storage.KeyOrders, orders); err != nil {
			return err
		}
		l.publish(ctx, mykafka.TopicOrders, orderID, map[string]any{
			"type":    "order_updated",
			"orderID": orderID,
			"status":  orders[i].Status,
		})
		return nil
	}
	return nil
}
