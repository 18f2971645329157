package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pizza_shop/internal/models"
)

func seedHistory(t *testing.T, l *Ledger) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, l.SaveOrder(ctx, models.Order{ID: "a", Total: 60.5, Status: models.OrderStatusConfirmed}))
	require.NoError(t, l.SaveOrder(ctx, models.Order{ID: "b", Total: 40, Status: models.OrderStatusConfirmed}))
	require.NoError(t, l.SaveOrder(ctx, models.Order{ID: "c", Total: 999, Status: models.OrderStatusFailed}))
	_, err := l.AddReview(ctx, "olives", 5, "")
	require.NoError(t, err)
	require.NoError(t, l.AddLoyaltyPoints(ctx, 101))
}

func TestStats_SkipsFailedOrders(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	seedHistory(t, l)

	// Counting every saved order would give 3 orders and 1099.5 spent. Failed
	// payments are left out so they cannot unlock achievements or rank players.
	s, err := l.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{OrderCount: 2, TotalSpent: 100.5, ReviewCount: 1, LoyaltyPoints: 101}, s)
}

func TestRefreshAchievements(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	seedHistory(t, l)

	got, err := l.RefreshAchievements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{AchievementFirstOrder, AchievementSpender100, AchievementLoyalty100}, got)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)
	seedHistory(t, l)
	ctx := context.Background()

	for _, sortBy := range []string{"", SortByOrders, SortBySpent, SortByLoyalty} {
		entries, err := l.Leaderboard(ctx, sortBy)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, 2, entries[0].OrderCount)
	}

	_, err := l.Leaderboard(ctx, "alphabetical")
	assert.ErrorIs(t, err, ErrValidation)
}
