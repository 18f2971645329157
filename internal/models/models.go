package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

const (
	MinRating       = 1
	MaxRating       = 5
	MaxReviewLength = 500
)

type Category string

const (
	CategoryPizza Category = "pizza"
	CategoryAddon Category = "addon"
)

type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Stock       int      `json:"stock"`
}

func NewMenuItem(id, name string, price float64, category Category, description string, stock int) MenuItem {
	return MenuItem{
		ID:          id,
		Name:        name,
		Price:       price,
		Category:    category,
		Description: description,
		Stock:       max(0, stock),
	}
}

type CartItem struct {
	MenuItemID string  `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

// NewCartItem snapshots name and price of item at add time.
func NewCartItem(item MenuItem, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}
	return CartItem{
		MenuItemID: item.ID,
		Quantity:   quantity,
		Name:       item.Name,
		Price:      item.Price,
	}, nil
}

func (c CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(c.Price).Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFailed    OrderStatus = "failed"
)

type Order struct {
	ID             string      `json:"id"`
	Timestamp      int64       `json:"timestamp"`
	Items          []CartItem  `json:"items"`
	Total          float64     `json:"total"`
	Status         OrderStatus `json:"status"`
	Reference      string      `json:"reference"`
	Signature      string      `json:"signature,omitempty"`
	OrderPublicKey string      `json:"orderPublicKey,omitempty"`
	WalletAddress  string      `json:"walletAddress,omitempty"`
	PromoCode      string      `json:"promoCode,omitempty"`
	DiscountAmount float64     `json:"discountAmount,omitempty"`
}

// OrderUpdate carries the fields to merge into a stored order; nil fields are left untouched.
type OrderUpdate struct {
	Status         *OrderStatus `json:"status"`
	Reference      *string      `json:"reference"`
	Signature      *string      `json:"signature"`
	OrderPublicKey *string      `json:"orderPublicKey"`
	WalletAddress  *string      `json:"walletAddress"`
	PromoCode      *string      `json:"promoCode"`
	DiscountAmount *float64     `json:"discountAmount"`
	Total          *float64     `json:"total"`
}

func (u OrderUpdate) Apply(o *Order) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.Reference != nil {
		o.Reference = *u.Reference
	}
	if u.Signature != nil {
		o.Signature = *u.Signature
	}
	if u.OrderPublicKey != nil {
		o.OrderPublicKey = *u.OrderPublicKey
	}
	if u.WalletAddress != nil {
		o.WalletAddress = *u.WalletAddress
	}
	if u.PromoCode != nil {
		o.PromoCode = *u.PromoCode
	}
	if u.DiscountAmount != nil {
		o.DiscountAmount = *u.DiscountAmount
	}
	if u.Total != nil {
		o.Total = *u.Total
	}
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromoCode struct {
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue float64      `json:"discountValue"`
	MaxUses       *int         `json:"maxUses,omitempty"`
	UsedCount     int          `json:"usedCount"`
	ExpiresAt     *int64       `json:"expiresAt,omitempty"`
	Active        bool         `json:"active"`
}

func (p PromoCode) Matches(code string) bool {
	return strings.EqualFold(p.Code, code)
}

// Exhausted reports whether a usage cap is set and reached. A cap of zero
// counts as no cap.
func (p PromoCode) Exhausted() bool {
	return p.MaxUses != nil && *p.MaxUses > 0 && p.UsedCount >= *p.MaxUses
}

func (p PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && *p.ExpiresAt > 0 && now.UnixMilli() > *p.ExpiresAt
}

type Review struct {
	ID         string `json:"id"`
	MenuItemID string `json:"menuItemId"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// NewReview clamps rating into [1,5] and cuts text to MaxReviewLength characters.
func NewReview(id, menuItemID string, rating int, text string, at time.Time) Review {
	return Review{
		ID:         id,
		MenuItemID: menuItemID,
		Rating:     min(MaxRating, max(MinRating, rating)),
		Text:       truncate(text, MaxReviewLength),
		Timestamp:  at.UnixMilli(),
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	UnlockedAt  *int64 `json:"unlockedAt,omitempty"`
}

// Unlock flips a locked achievement and stamps it. It reports false if the
// achievement was already unlocked.
func (a *Achievement) Unlock(at time.Time) bool {
	if a.Unlocked {
		return false
	}
	ts := at.UnixMilli()
	a.Unlocked = true
	a.UnlockedAt = &ts
	return true
}
