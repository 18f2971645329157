package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pizza_shop/internal/models"
)

type Stats struct {
	OrderCount    int     `json:"orderCount"`
	TotalSpent    float64 `json:"totalSpent"`
	ReviewCount   int     `json:"reviewCount"`
	LoyaltyPoints int     `json:"loyaltyPoints"`
}

// Stats aggregates the persisted history. Failed orders are not counted.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.loadOrders(ctx)
	if err != nil {
		return Stats{}, err
	}
	reviews, err := l.loadReviews(ctx)
	if err != nil {
		return Stats{}, err
	}
	points, err := l.loadPoints(ctx)
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	spent := decimal.Zero
	for _, o := range orders {
		if o.Status == models.OrderStatusFailed {
			continue
		}
		s.OrderCount++
		spent = spent.Add(decimal.NewFromFloat(o.Total))
	}
	s.TotalSpent = spent.InexactFloat64()
	s.ReviewCount = len(reviews)
	s.LoyaltyPoints = points
	return s, nil
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Stats
}

const (
	SortByOrders  = "orders"
	SortBySpent   = "spent"
	SortByLoyalty = "loyalty"
)

// Leaderboard ranks the players of this ledger. A ledger belongs to a single
// browsing session, so there is exactly one player.
func (l *Ledger) Leaderboard(ctx context.Context, sortBy string) ([]LeaderboardEntry, error) {
	var less func(a, b Stats) bool
	switch sortBy {
	case SortByOrders:
		less = func(a, b Stats) bool { return a.OrderCount > b.OrderCount }
	case SortBySpent, "":
		less = func(a, b Stats) bool { return a.TotalSpent > b.TotalSpent }
	case SortByLoyalty:
		less = func(a, b Stats) bool { return a.LoyaltyPoints > b.LoyaltyPoints }
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, sortBy)
	}

	s, err := l.Stats(ctx)
	if err != nil {
		return nil, err
	}

	entries := []LeaderboardEntry{{Player: "Player", Stats: s}}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i].Stats, entries[j].Stats) })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
