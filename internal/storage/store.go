// Package storage is the key-value persistence layer behind the ledger.
// Each collection lives under one fixed key and is read and written whole.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
)

const (
	KeyInventory     = "pizza_inventory"
	KeyOrders        = "pizza_orders"
	KeyPromoCodes    = "pizza_promo_codes"
	KeyLoyaltyPoints = "pizza_loyalty_points"
	KeyReviews       = "pizza_reviews"
	KeyAchievements  = "pizza_achievements"
	KeyCart          = "pizza_cart"
)

// Store reads and writes whole values by key. There are no partial updates
// and no transactions spanning keys.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

type prefixed struct {
	store  Store
	prefix string
}

// Prefixed namespaces every key of store, so several ledgers can share one backend.
func Prefixed(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &prefixed{store: store, prefix: prefix}
}

func (p *prefixed) Read(ctx context.Context, key string) (string, bool, error) {
	return p.store.Read(ctx, p.prefix+key)
}

func (p *prefixed) Write(ctx context.Context, key, value string) error {
	return p.store.Write(ctx, p.prefix+key, value)
}

// LoadJSON decodes the collection stored under key. ok is false when nothing
// is stored or the stored value is corrupt; callers substitute their defaults.
func LoadJSON[T any](ctx context.Context, st Store, key string) (T, bool, error) {
	var v T
	raw, ok, err := st.Read(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logging.FromContext(ctx).Warn("ledger_entry_corrupt", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return v, true, nil
}

func SaveJSON[T any](ctx context.Context, st Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Write(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
