package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

func TestMemoryStore_ReadWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()

	_, ok, err := st.Read(ctx, KeyOrders)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Write(ctx, KeyOrders, "[]"))
	v, ok, err := st.Read(ctx, KeyOrders)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestPrefixed_NamespacesKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := NewMemoryStore()
	a := Prefixed(base, "session-a:")
	b := Prefixed(base, "session-b:")

	require.NoError(t, a.Write(ctx, KeyLoyaltyPoints, "10"))

	_, ok, err := b.Read(ctx, KeyLoyaltyPoints)
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := base.Read(ctx, "session-a:"+KeyLoyaltyPoints)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	assert.Same(t, base, Prefixed(base, ""))
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()

	items, ok, err := LoadJSON[[]sample](ctx, st, KeyInventory)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, items)

	require.NoError(t, SaveJSON(ctx, st, KeyInventory, []sample{{ID: "olives", Stock: 3}}))
	items, ok, err = LoadJSON[[]sample](ctx, st, KeyInventory)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []sample{{ID: "olives", Stock: 3}}, items)
}

func TestLoadJSON_CorruptValueFallsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Write(ctx, KeyInventory, "{not json"))

	items, ok, err := LoadJSON[[]sample](ctx, st, KeyInventory)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, items)
}
