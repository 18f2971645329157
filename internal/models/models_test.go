package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMenuItem_ClampsStock(t *testing.T) {
	t.Parallel()

	item := NewMenuItem("olives", "Olives", 0.5, CategoryAddon, "Black olives", -4)
	assert.Equal(t, 0, item.Stock)
}

func TestNewCartItem(t *testing.T) {
	t.Parallel()

	item := NewMenuItem("pepperoni", "Pepperoni", 0.5, CategoryAddon, "", 10)

	ci, err := NewCartItem(item, 3)
	require.NoError(t, err)
	assert.Equal(t, "pepperoni", ci.MenuItemID)
	assert.Equal(t, "Pepperoni", ci.Name)
	assert.Equal(t, 1.5, ci.LineTotal().InexactFloat64())

	_, err = NewCartItem(item, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestNewReview_Normalises(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name   string
		rating int
		want   int
	}{
		{name: "below range", rating: -3, want: 1},
		{name: "zero", rating: 0, want: 1},
		{name: "in range", rating: 4, want: 4},
		{name: "above range", rating: 9, want: 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewReview("r1", "olives", tt.rating, "ok", at)
			assert.Equal(t, tt.want, r.Rating)
			assert.Equal(t, at.UnixMilli(), r.Timestamp)
		})
	}

	long := NewReview("r2", "olives", 5, strings.Repeat("é", 600), at)
	assert.Equal(t, MaxReviewLength, len([]rune(long.Text)))
}

func TestPromoCode_Checks(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(2_000)
	maxUses := 2
	zero := 0
	past := int64(1_000)
	boundary := int64(2_000)
	future := int64(3_000)

	assert.True(t, PromoCode{Code: "Welcome10"}.Matches("WELCOME10"))

	assert.False(t, PromoCode{UsedCount: 5}.Exhausted())
	assert.False(t, PromoCode{MaxUses: &maxUses, UsedCount: 1}.Exhausted())
	assert.True(t, PromoCode{MaxUses: &maxUses, UsedCount: 2}.Exhausted())
	assert.False(t, PromoCode{MaxUses: &zero, UsedCount: 7}.Exhausted())

	assert.False(t, PromoCode{}.Expired(now))
	assert.True(t, PromoCode{ExpiresAt: &past}.Expired(now))
	assert.False(t, PromoCode{ExpiresAt: &future}.Expired(now))
	assert.False(t, PromoCode{ExpiresAt: &boundary}.Expired(now))
}

func TestAchievement_UnlockOnce(t *testing.T) {
	t.Parallel()

	a := Achievement{ID: "first_order"}
	first := time.UnixMilli(10)

	assert.True(t, a.Unlock(first))
	assert.False(t, a.Unlock(time.UnixMilli(20)))
	require.NotNil(t, a.UnlockedAt)
	assert.EqualValues(t, 10, *a.UnlockedAt)
}

func TestOrderUpdate_Apply(t *testing.T) {
	t.Parallel()

	o := Order{ID: "o1", Status: OrderStatusPending, Reference: "ref"}
	status := OrderStatusConfirmed
	sig := "5ig"

	OrderUpdate{Status: &status, Signature: &sig}.Apply(&o)

	assert.Equal(t, OrderStatusConfirmed, o.Status)
	assert.Equal(t, "5ig", o.Signature)
	assert.Equal(t, "ref", o.Reference)
}
