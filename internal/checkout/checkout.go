// Package checkout turns the session cart into an order: it prices the cart,
// reserves stock, takes payment and records the outcome in the ledger.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pizza_shop/internal/cart"
	"github.com/Skotchmaster/pizza_shop/internal/ledger"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/payment"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidPromo  = errors.New("invalid promo code")
	ErrOutOfStock    = errors.New("out of stock")
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrPaymentFailed = errors.New("payment failed")
)

type Method string

const (
	MethodCircle Method = "circle"
	MethodWallet Method = "wallet"
)

type CirclePayer interface {
	ProcessPayment(ctx context.Context, req payment.Request) (payment.Receipt, error)
}

type WalletPayer interface {
	Transfer(ctx context.Context, walletAddress string, amount float64) (string, error)
}

type Service struct {
	Ledger *ledger.Ledger
	Cart   *cart.Cart
	Circle CirclePayer
	Wallet WalletPayer
	Now    func() time.Time
}

type Request struct {
	Method        Method `json:"method"`
	PromoCode     string `json:"promoCode"`
	Email         string `json:"email"`
	WalletID      string `json:"walletId"`
	WalletAddress string `json:"walletAddress"`
}

type Result struct {
	Order        models.Order `json:"order"`
	Subtotal     float64      `json:"subtotal"`
	PointsEarned int          `json:"pointsEarned"`
	Achievements []string     `json:"achievements"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	l := logging.FromContext(ctx).With("service", "checkout")

	if req.Method != MethodCircle && req.Method != MethodWallet {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}

	items, err := s.Cart.Items(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}
	if err := s.checkStock(ctx, items); err != nil {
		return Result{}, err
	}

	subtotal := cart.Total(items)
	var discount float64
	if req.PromoCode != "" {
		v, err := s.Ledger.ValidatePromoCode(ctx, req.PromoCode)
		if err != nil {
			return Result{}, err
		}
		if !v.Valid {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidPromo, v.Message)
		}
		discount = ledger.CalculateDiscount(subtotal, v.Discount, v.DiscountType)
	}
	total := ledger.DiscountedTotal(subtotal, discount)

	order := models.Order{
		ID:            uuid.NewString(),
		Timestamp:     s.now().UnixMilli(),
		Items:         items,
		Total:         total,
		Status:        models.OrderStatusPending,
		WalletAddress: req.WalletAddress,
	}
	if req.PromoCode != "" {
		order.PromoCode = req.PromoCode
		order.DiscountAmount = decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(total)).InexactFloat64()
	}

	if err := s.reserve(ctx, items); err != nil {
		return Result{}, err
	}

	// Only the payment wait follows the caller. Once stock is reserved the
	// outcome is always recorded, even if the client has gone away.
	settle := context.WithoutCancel(ctx)

	if err := s.pay(ctx, req, &order); err != nil {
		l.Warn("checkout_payment_failed", "order_id", order.ID, "method", req.Method, "error", err)
		s.release(settle, items)
		order.Status = models.OrderStatusFailed
		if saveErr := s.Ledger.SaveOrder(settle, order); saveErr != nil {
			l.Error("checkout_failed_order_not_saved", "order_id", order.ID, "error", saveErr)
		}
		return Result{Order: order, Subtotal: subtotal}, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	order.Status = models.OrderStatusConfirmed
	if err := s.Ledger.SaveOrder(settle, order); err != nil {
		return Result{}, err
	}
	if order.PromoCode != "" {
		if _, err := s.Ledger.ApplyPromoCode(settle, order.PromoCode); err != nil {
			return Result{}, err
		}
	}

	points := ledger.PointsForTotal(total)
	if err := s.Ledger.AddLoyaltyPoints(settle, points); err != nil {
		return Result{}, err
	}
	if err := s.Cart.Clear(settle); err != nil {
		return Result{}, err
	}
	unlocked, err := s.Ledger.RefreshAchievements(settle)
	if err != nil {
		return Result{}, err
	}

	l.Info("checkout_completed", "order_id", order.ID, "method", req.Method, "total", total, "points", points)
	return Result{
		Order:        order,
		Subtotal:     subtotal,
		PointsEarned: points,
		Achievements: unlocked,
	}, nil
}

func (s *Service) checkStock(ctx context.Context, items []models.CartItem) error {
	inventory, err := s.Ledger.GetInventory(ctx)
	if err != nil {
		return err
	}
	stock := make(map[string]int, len(inventory))
	for _, it := range inventory {
		stock[it.ID] = it.Stock
	}
	for _, it := range items {
		if have, ok := stock[it.MenuItemID]; ok && have < it.Quantity {
			return fmt.Errorf("%w: %s has %d left", ErrOutOfStock, it.Name, have)
		}
	}
	return nil
}

// reserve takes every line out of stock. If a write fails, the lines already
// taken are put back.
func (s *Service) reserve(ctx context.Context, items []models.CartItem) error {
	for i, it := range items {
		if err := s.Ledger.UpdateStock(ctx, it.MenuItemID, it.Quantity); err != nil {
			s.release(context.WithoutCancel(ctx), items[:i])
			return err
		}
	}
	return nil
}

func (s *Service) release(ctx context.Context, items []models.CartItem) {
	for _, it := range items {
		if err := s.Ledger.RestoreStock(ctx, it.MenuItemID, it.Quantity); err != nil {
			logging.FromContext(ctx).Error("checkout_stock_not_restored", "item_id", it.MenuItemID, "quantity", it.Quantity, "error", err)
		}
	}
}

// pay settles the order total and fills in the payment reference. A free
// order needs no payment.
func (s *Service) pay(ctx context.Context, req Request, order *models.Order) error {
	if order.Total <= 0 {
		order.Reference = "free_" + order.ID
		return nil
	}

	switch req.Method {
	case MethodCircle:
		receipt, err := s.Circle.ProcessPayment(ctx, payment.Request{
			WalletID: req.WalletID,
			Email:    req.Email,
			Amount:   order.Total,
			Items:    order.Items,
		})
		if err != nil {
			return err
		}
		order.Reference = receipt.TransactionID
	case MethodWallet:
		sig, err := s.Wallet.Transfer(ctx, req.WalletAddress, order.Total)
		if err != nil {
			return err
		}
		order.Reference = uuid.NewString()
		order.Signature = sig
	}
	return nil
}
