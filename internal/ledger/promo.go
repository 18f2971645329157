package ledger

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

type PromoRejection string

const (
	PromoNotFound  PromoRejection = "not_found"
	PromoInactive  PromoRejection = "inactive"
	PromoExhausted PromoRejection = "max_uses_reached"
	PromoExpired   PromoRejection = "expired"
)

type PromoValidation struct {
	Valid        bool                `json:"valid"`
	Discount     float64             `json:"discount"`
	DiscountType models.DiscountType `json:"discountType,omitempty"`
	Reason       PromoRejection      `json:"reason,omitempty"`
	Message      string              `json:"message"`
}

type PromoApplication struct {
	DiscountAmount float64             `json:"discountAmount"`
	DiscountType   models.DiscountType `json:"discountType"`
	Message        string              `json:"message"`
}

func (l *Ledger) loadPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	codes, ok, err := storage.LoadJSON[[]models.PromoCode](ctx, l.Store, storage.KeyPromoCodes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultPromoCodes(), nil
	}
	return codes, nil
}

func findPromo(codes []models.PromoCode, code string) int {
	for i := range codes {
		if codes[i].Matches(code) {
			return i
		}
	}
	return -1
}

func (l *Ledger) GetPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadPromoCodes(ctx)
}

func (l *Ledger) SavePromoCodes(ctx context.Context, codes []models.PromoCode) error {
	defer l.lock(ctx)()
	return storage.SaveJSON(ctx, l.Store, storage.KeyPromoCodes, codes)
}

// ValidatePromoCode looks code up case-insensitively and checks, in order,
// existence, the active flag, the usage cap and expiry. The first failing
// check decides the result. Nothing is written.
func (l *Ledger) ValidatePromoCode(ctx context.Context, code string) (PromoValidation, error) {
	codes, err := l.GetPromoCodes(ctx)
	if err != nil {
		return PromoValidation{}, err
	}

	idx := findPromo(codes, code)
	if idx < 0 {
		return PromoValidation{Reason: PromoNotFound, Message: "Promo code not found"}, nil
	}
	p := codes[idx]

	switch {
	case !p.Active:
		return PromoValidation{Reason: PromoInactive, Message: "Promo code is inactive"}, nil
	case p.Exhausted():
		return PromoValidation{Reason: PromoExhausted, Message: "Promo code has reached max uses"}, nil
	case p.Expired(l.now()):
		return PromoValidation{Reason: PromoExpired, Message: "Promo code has expired"}, nil
	}

	return PromoValidation{
		Valid:        true,
		Discount:     p.DiscountValue,
		DiscountType: p.DiscountType,
		Message:      discountMessage(p),
	}, nil
}

func discountMessage(p models.PromoCode) string {
	value := strconv.FormatFloat(p.DiscountValue, 'f', -1, 64)
	if p.DiscountType == models.DiscountPercentage {
		return value + "% discount applied!"
	}
	return "€" + value + " discount applied!"
}

// ApplyPromoCode counts one use of code and returns its discount. It does not
// re-validate: callers run ValidatePromoCode first. An unknown code yields a
// zero discount and writes nothing.
func (l *Ledger) ApplyPromoCode(ctx context.Context, code string) (PromoApplication, error) {
	defer l.lock(ctx)()

	codes, err := l.loadPromoCodes(ctx)
	if err != nil {
		return PromoApplication{}, err
	}

	idx := findPromo(codes, code)
	if idx < 0 {
		return PromoApplication{DiscountType: models.DiscountPercentage, Message: "Invalid code"}, nil
	}

	codes[idx].UsedCount++
	if err := storage.SaveJSON(ctx, l.Store, storage.KeyPromoCodes, codes); err != nil {
		return PromoApplication{}, err
	}

	p := codes[idx]
	if p.Exhausted() && p.UsedCount > *p.MaxUses {
		logging.FromContext(ctx).Warn("promo_over_cap", "code", p.Code, "used", p.UsedCount, "max", *p.MaxUses)
	}
	l.publish(ctx, mykafka.TopicPromo, p.Code, map[string]any{
		"type":      "promo_applied",
		"code":      p.Code,
		"usedCount": p.UsedCount,
	})

	return PromoApplication{
		DiscountAmount: p.DiscountValue,
		DiscountType:   p.DiscountType,
		Message:        "Code applied!",
	}, nil
}

// CalculateDiscount returns the amount to take off total. A fixed discount is
// returned as is and may exceed total; callers floor the final total at zero.
func CalculateDiscount(total, value float64, discountType models.DiscountType) float64 {
	if discountType == models.DiscountPercentage {
		return decimal.NewFromFloat(total).
			Mul(decimal.NewFromFloat(value)).
			Div(decimal.NewFromInt(100)).
			InexactFloat64()
	}
	return value
}

// DiscountedTotal applies a discount and floors the result at zero.
func DiscountedTotal(total, discount float64) float64 {
	d := decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(discount))
	if d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}
