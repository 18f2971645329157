package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

// 100 points are worth 5 currency units.
var pointValue = decimal.New(5, -2)

func (l *Ledger) loadPoints(ctx context.Context) (int, error) {
	raw, ok, err := l.Store.Read(ctx, storage.KeyLoyaltyPoints)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", storage.KeyLoyaltyPoints, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logging.FromContext(ctx).Warn("ledger_entry_corrupt", "key", storage.KeyLoyaltyPoints, "error", err)
		return 0, nil
	}
	return n, nil
}

func (l *Ledger) savePoints(ctx context.Context, points int) error {
	if err := l.Store.Write(ctx, storage.KeyLoyaltyPoints, strconv.Itoa(points)); err != nil {
		return fmt.Errorf("write %s: %w", storage.KeyLoyaltyPoints, err)
	}
	return nil
}

func (l *Ledger) GetLoyaltyPoints(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadPoints(ctx)
}

func (l *Ledger) AddLoyaltyPoints(ctx context.Context, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: loyalty amount must not be negative", ErrValidation)
	}

	defer l.lock(ctx)()

	points, err := l.loadPoints(ctx)
	if err != nil {
		return err
	}
	if err := l.savePoints(ctx, points+amount); err != nil {
		return err
	}
	l.publish(ctx, mykafka.TopicLoyalty, "loyalty", map[string]any{
		"type":    "points_added",
		"amount":  amount,
		"balance": points + amount,
	})
	return nil
}

// RedeemLoyaltyPoints subtracts points if the balance covers them and reports
// whether it did. The balance is untouched otherwise.
func (l *Ledger) RedeemLoyaltyPoints(ctx context.Context, points int) (bool, error) {
	if points < 0 {
		return false, nil
	}

	defer l.lock(ctx)()

	balance, err := l.loadPoints(ctx)
	if err != nil {
		return false, err
	}
	if balance < points {
		return false, nil
	}
	if err := l.savePoints(ctx, balance-points); err != nil {
		return false, err
	}
	l.publish(ctx, mykafka.TopicLoyalty, "loyalty", map[string]any{
		"type":    "points_redeemed",
		"amount":  points,
		"balance": balance - points,
	})
	return true, nil
}

func PointsToEuros(points int) float64 {
	return decimal.NewFromInt(int64(points)).Mul(pointValue).InexactFloat64()
}

// PointsForTotal is the accrual for an order: one point per currency unit, rounded.
func PointsForTotal(total float64) int {
	return int(decimal.NewFromFloat(total).Round(0).IntPart())
}
