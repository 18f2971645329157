package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pizza_shop/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

func TestValidatePromoCode_Defaults(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	v, err := l.ValidatePromoCode(ctx, "welcome10")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 10.0, v.Discount)
	assert.Equal(t, models.DiscountPercentage, v.DiscountType)
	assert.Equal(t, "10% discount applied!", v.Message)

	v, err = l.ValidatePromoCode(ctx, "PIZZA5")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "€5 discount applied!", v.Message)

	v, err = l.ValidatePromoCode(ctx, "FREEPIZZA")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, PromoNotFound, v.Reason)
	assert.Equal(t, "Promo code not found", v.Message)
}

func TestValidatePromoCode_RejectionOrder(t *testing.T) {
	t.Parallel()

	past := int64Ptr(fixedNow.UnixMilli() - 1)
	future := int64Ptr(fixedNow.UnixMilli() + 1)

	tests := []struct {
		name  string
		promo models.PromoCode
		want  PromoRejection
		msg   string
	}{
		{
			name:  "inactive wins over expired",
			promo: models.PromoCode{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 1, Active: false, ExpiresAt: past},
			want:  PromoInactive,
			msg:   "Promo code is inactive",
		},
		{
			name:  "cap wins over expired",
			promo: models.PromoCode{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 1, Active: true, MaxUses: intPtr(3), UsedCount: 3, ExpiresAt: past},
			want:  PromoExhausted,
			msg:   "Promo code has reached max uses",
		},
		{
			name:  "expired",
			promo: models.PromoCode{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 1, Active: true, ExpiresAt: past},
			want:  PromoExpired,
			msg:   "Promo code has expired",
		},
		{
			name:  "not yet expired",
			promo: models.PromoCode{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 1, Active: true, ExpiresAt: future},
		},
		{
			name:  "zero cap is uncapped",
			promo: models.PromoCode{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 1, Active: true, MaxUses: intPtr(0), UsedCount: 40},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, _, _ := newTestLedger(t)
			ctx := context.Background()
			require.NoError(t, l.SavePromoCodes(ctx, []models.PromoCode{tt.promo}))

			v, err := l.ValidatePromoCode(ctx, "x")
			require.NoError(t, err)
			if tt.want == "" {
				assert.True(t, v.Valid)
				return
			}
			assert.False(t, v.Valid)
			assert.Equal(t, tt.want, v.Reason)
			assert.Equal(t, tt.msg, v.Message)
		})
	}
}

func TestApplyPromoCode_IncrementsUsage(t *testing.T) {
	t.Parallel()

	l, pub, _ := newTestLedger(t)
	ctx := context.Background()

	app, err := l.ApplyPromoCode(ctx, "solana20")
	require.NoError(t, err)
	assert.Equal(t, 20.0, app.DiscountAmount)
	assert.Equal(t, models.DiscountPercentage, app.DiscountType)
	assert.Equal(t, "Code applied!", app.Message)

	codes, err := l.GetPromoCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, codes[1].UsedCount)
	assert.Equal(t, 0, codes[0].UsedCount)
	assert.Equal(t, []string{"promo_applied"}, pub.types())
}

func TestApplyPromoCode_DoesNotRevalidate(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.SavePromoCodes(ctx, []models.PromoCode{
		{Code: "DONE", DiscountType: models.DiscountFixed, DiscountValue: 2, MaxUses: intPtr(1), UsedCount: 1, Active: false},
	}))

	app, err := l.ApplyPromoCode(ctx, "DONE")
	require.NoError(t, err)
	assert.Equal(t, 2.0, app.DiscountAmount)

	codes, err := l.GetPromoCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, codes[0].UsedCount)
}

func TestApplyPromoCode_Unknown(t *testing.T) {
	t.Parallel()

	l, pub, st := newTestLedger(t)
	ctx := context.Background()

	app, err := l.ApplyPromoCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, PromoApplication{DiscountType: models.DiscountPercentage, Message: "Invalid code"}, app)

	_, stored, err := st.Read(ctx, "pizza_promo_codes")
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Empty(t, pub.types())
}

func TestCalculateDiscount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20.0, CalculateDiscount(100, 20, models.DiscountPercentage))
	assert.Equal(t, 5.0, CalculateDiscount(100, 5, models.DiscountFixed))
	assert.Equal(t, 1.5, CalculateDiscount(15, 10, models.DiscountPercentage))
	assert.Equal(t, 5.0, CalculateDiscount(3, 5, models.DiscountFixed))
}

func TestDiscountedTotal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, DiscountedTotal(3, 5))
	assert.Equal(t, 13.5, DiscountedTotal(15, 1.5))
}
