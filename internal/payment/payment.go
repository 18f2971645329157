// Package payment simulates the two payment rails of the storefront: Circle
// custodial wallets paid by email and self-custody wallet transfers. No money
// moves; both providers only validate input and hand out identifiers.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
)

var (
	ErrInvalidEmail  = errors.New("valid email required")
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidAmount = errors.New("invalid amount")
)

type Wallet struct {
	WalletID string `json:"walletId"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

type Request struct {
	WalletID string            `json:"walletId"`
	Email    string            `json:"email"`
	Amount   float64           `json:"amount"`
	Items    []models.CartItem `json:"items"`
}

type Receipt struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

// CircleProvider stands in for the Circle wallets and payments APIs.
type CircleProvider struct {
	Delay time.Duration
	Now   func() time.Time
}

func (p *CircleProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *CircleProvider) CreateWallet(ctx context.Context, email string) (Wallet, error) {
	if !strings.Contains(email, "@") {
		return Wallet{}, ErrInvalidEmail
	}
	if err := wait(ctx, p.Delay); err != nil {
		return Wallet{}, err
	}

	w := Wallet{
		WalletID: newID("circle_wallet", p.now()),
		Email:    email,
		Message:  fmt.Sprintf("Circle wallet created for %s. Ready to accept USDC payments without crypto wallet!", email),
	}
	logging.FromContext(ctx).Info("circle_wallet_created", "wallet_id", w.WalletID)
	return w, nil
}

func (p *CircleProvider) ProcessPayment(ctx context.Context, req Request) (Receipt, error) {
	if req.WalletID == "" || req.Email == "" || req.Amount == 0 || len(req.Items) == 0 {
		return Receipt{}, ErrMissingFields
	}
	if req.Amount < 0 {
		return Receipt{}, ErrInvalidAmount
	}
	if err := wait(ctx, p.Delay); err != nil {
		return Receipt{}, err
	}

	r := Receipt{
		TransactionID: newID("tx_circle", p.now()),
		Message: fmt.Sprintf("Payment of $%s processed successfully for %s",
			decimal.NewFromFloat(req.Amount).StringFixed(2), req.Email),
	}
	logging.FromContext(ctx).Info("circle_payment_processed", "transaction_id", r.TransactionID, "amount", req.Amount)
	return r, nil
}

// WalletProvider stands in for a signed USDC transfer from a connected wallet.
type WalletProvider struct {
	Delay time.Duration
}

// Transfer returns the signature of the simulated transfer.
func (p *WalletProvider) Transfer(ctx context.Context, walletAddress string, amount float64) (string, error) {
	if walletAddress == "" {
		return "", ErrMissingFields
	}
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if err := wait(ctx, p.Delay); err != nil {
		return "", err
	}
	return MockSignature()
}

// MockSignature returns 88 base64 characters, the length of an encoded
// ed25519 transaction signature.
func MockSignature() (string, error) {
	buf := make([]byte, 66)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("signature entropy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func newID(prefix string, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, at.UnixMilli(), suffix)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
