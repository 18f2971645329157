package storage

import (
	"context"
	"testing"

	"github.com/Skotchmaster/pizza_shop/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	st := &GormStore{DB: gdb}
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestGormStore_ReadMissing(t *testing.T) {
	st := newGormStore(t)

	v, ok, err := st.Read(context.Background(), KeyReviews)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestGormStore_WriteOverwrites(t *testing.T) {
	st := newGormStore(t)
	ctx := context.Background()

	require.NoError(t, st.Write(ctx, KeyLoyaltyPoints, "5"))
	require.NoError(t, st.Write(ctx, KeyLoyaltyPoints, "42"))

	v, ok, err := st.Read(ctx, KeyLoyaltyPoints)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	var count int64
	require.NoError(t, st.DB.Model(&Entry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGormStore_JSONRoundTrip(t *testing.T) {
	st := newGormStore(t)
	ctx := context.Background()

	require.NoError(t, SaveJSON(ctx, st, KeyInventory, []sample{{ID: "pepperoni", Stock: 100}}))
	items, ok, err := LoadJSON[[]sample](ctx, st, KeyInventory)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, items[0].Stock)
}
