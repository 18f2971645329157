package ledger

import (
	"context"

	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

type achievementRule struct {
	id  string
	met func(s Stats) bool
}

var achievementRules = []achievementRule{
	{AchievementFirstOrder, func(s Stats) bool { return s.OrderCount >= 1 }},
	{AchievementFiveOrders, func(s Stats) bool { return s.OrderCount >= 5 }},
	{AchievementTenOrders, func(s Stats) bool { return s.OrderCount >= 10 }},
	{AchievementSpender100, func(s Stats) bool { return s.TotalSpent >= 100 }},
	{AchievementReviewMaster, func(s Stats) bool { return s.ReviewCount >= 5 }},
	{AchievementLoyalty100, func(s Stats) bool { return s.LoyaltyPoints >= 100 }},
}

func (l *Ledger) loadAchievements(ctx context.Context) ([]models.Achievement, error) {
	list, ok, err := storage.LoadJSON[[]models.Achievement](ctx, l.Store, storage.KeyAchievements)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultAchievements(), nil
	}
	return list, nil
}

func (l *Ledger) GetAchievements(ctx context.Context) ([]models.Achievement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadAchievements(ctx)
}

// UnlockAchievement unlocks id once; later calls and unknown ids are no-ops.
func (l *Ledger) UnlockAchievement(ctx context.Context, id string) error {
	defer l.lock(ctx)()
	_, err := l.unlock(ctx, []string{id})
	return err
}

// unlock must be called with l.mu held. It returns the ids that changed state.
func (l *Ledger) unlock(ctx context.Context, ids []string) ([]string, error) {
	list, err := l.loadAchievements(ctx)
	if err != nil {
		return nil, err
	}

	now := l.now()
	var changed []string
	for _, id := range ids {
		for i := range list {
			if list[i].ID == id && list[i].Unlock(now) {
				changed = append(changed, id)
			}
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}

	if err := storage.SaveJSON(ctx, l.Store, storage.KeyAchievements, list); err != nil {
		return nil, err
	}
	for _, id := range changed {
		l.publish(ctx, mykafka.TopicAchievements, id, map[string]any{
			"type":          "achievement_unlocked",
			"achievementID": id,
		})
	}
	return changed, nil
}

// CheckAchievements unlocks every achievement whose threshold the given
// aggregates meet and returns those ids, including ones unlocked before.
func (l *Ledger) CheckAchievements(ctx context.Context, orderCount int, totalSpent float64, reviewCount, loyaltyPoints int) ([]string, error) {
	s := Stats{
		OrderCount:    orderCount,
		TotalSpent:    totalSpent,
		ReviewCount:   reviewCount,
		LoyaltyPoints: loyaltyPoints,
	}

	met := make([]string, 0, len(achievementRules))
	for _, r := range achievementRules {
		if r.met(s) {
			met = append(met, r.id)
		}
	}
	if len(met) == 0 {
		return met, nil
	}

	defer l.lock(ctx)()
	if _, err := l.unlock(ctx, met); err != nil {
		return nil, err
	}
	return met, nil
}

// RefreshAchievements runs CheckAchievements against the persisted aggregates.
func (l *Ledger) RefreshAchievements(ctx context.Context) ([]string, error) {
	s, err := l.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return l.CheckAchievements(ctx, s.OrderCount, s.TotalSpent, s.ReviewCount, s.LoyaltyPoints)
}
