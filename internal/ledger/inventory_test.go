package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

func stockOf(t *testing.T, l *Ledger, id string) int {
	t.Helper()
	item, ok, err := l.GetMenuItem(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok, "item %s missing", id)
	return item.Stock
}

func TestGetInventory_Defaults(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	items, err := l.GetInventory(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "pepperoni", items[0].ID)
	assert.Equal(t, 100, items[0].Stock)
	assert.Equal(t, 80, items[1].Stock)
	assert.Equal(t, 60, items[2].Stock)
	for _, it := range items {
		assert.Equal(t, models.CategoryAddon, it.Category)
		assert.Equal(t, 0.5, it.Price)
	}
}

func TestGetInventory_CorruptFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	l, _, st := newTestLedger(t)
	require.NoError(t, st.Write(context.Background(), storage.KeyInventory, "{not json"))

	items, err := l.GetInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultMenuItems(), items)
}

func TestSaveInventory_RoundTripsAndClamps(t *testing.T) {
	t.Parallel()

	l, pub, _ := newTestLedger(t)
	ctx := context.Background()

	in := []models.MenuItem{
		{ID: "margherita", Name: "Margherita", Price: 8, Category: models.CategoryPizza, Stock: 5},
		{ID: "basil", Name: "Basil", Price: 0.3, Category: models.CategoryAddon, Stock: -2},
	}
	require.NoError(t, l.SaveInventory(ctx, in))

	got, err := l.GetInventory(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, in[0], got[0])
	assert.Equal(t, 0, got[1].Stock)
	assert.Equal(t, []string{"inventory_replaced"}, pub.types())
}

func TestUpdateStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{name: "partial", quantity: 15, want: 45},
		{name: "exact", quantity: 60, want: 0},
		{name: "oversell floors at zero", quantity: 75, want: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, _, _ := newTestLedger(t)
			require.NoError(t, l.UpdateStock(context.Background(), "olives", tt.quantity))
			assert.Equal(t, tt.want, stockOf(t, l, "olives"))
		})
	}
}

func TestRestoreStock(t *testing.T) {
	t.Parallel()

	l, pub, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.UpdateStock(ctx, "mushrooms", 30))
	require.NoError(t, l.RestoreStock(ctx, "mushrooms", 30))
	assert.Equal(t, 80, stockOf(t, l, "mushrooms"))

	require.NoError(t, l.RestoreStock(ctx, "mushrooms", 5))
	assert.Equal(t, 85, stockOf(t, l, "mushrooms"))
	assert.Equal(t, []string{"stock_decreased", "stock_restored", "stock_restored"}, pub.types())
}

func TestSetStock(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.SetStock(ctx, "pepperoni", 7))
	assert.Equal(t, 7, stockOf(t, l, "pepperoni"))

	require.NoError(t, l.SetStock(ctx, "pepperoni", -1))
	assert.Equal(t, 0, stockOf(t, l, "pepperoni"))
}

func TestAdjustStock_UnknownItemIsNoop(t *testing.T) {
	t.Parallel()

	l, pub, st := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.UpdateStock(ctx, "pineapple", 3))

	_, stored, err := st.Read(ctx, storage.KeyInventory)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Empty(t, pub.types())
}

func TestGetMenuItem_Unknown(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	_, ok, err := l.GetMenuItem(context.Background(), "anchovies")
	require.NoError(t, err)
	assert.False(t, ok)
}
