package ledger

import "github.com/Skotchmaster/pizza_shop/internal/models"

func intPtr(v int) *int { return &v }

// DefaultMenuItems is the inventory used until one has been saved.
func DefaultMenuItems() []models.MenuItem {
	return []models.MenuItem{
		models.NewMenuItem("pepperoni", "Pepperoni", 0.5, models.CategoryAddon, "Classic pepperoni slices", 100),
		models.NewMenuItem("mushrooms", "Mushrooms", 0.5, models.CategoryAddon, "Fresh mushroom pieces", 80),
		models.NewMenuItem("olives", "Olives", 0.5, models.CategoryAddon, "Black olives", 60),
	}
}

func DefaultPromoCodes() []models.PromoCode {
	return []models.PromoCode{
		{Code: "WELCOME10", DiscountType: models.DiscountPercentage, DiscountValue: 10, MaxUses: intPtr(100), Active: true},
		{Code: "SOLANA20", DiscountType: models.DiscountPercentage, DiscountValue: 20, MaxUses: intPtr(50), Active: true},
		{Code: "PIZZA5", DiscountType: models.DiscountFixed, DiscountValue: 5, MaxUses: intPtr(200), Active: true},
	}
}

const (
	AchievementFirstOrder   = "first_order"
	AchievementFiveOrders   = "five_orders"
	AchievementTenOrders    = "ten_orders"
	AchievementSpender100   = "spender_100"
	AchievementReviewMaster = "review_master"
	AchievementLoyalty100   = "loyalty_100"
)

func DefaultAchievements() []models.Achievement {
	return []models.Achievement{
		{ID: AchievementFirstOrder, Name: "First Pizza 🍕", Description: "Complete your first order", Icon: "🍕"},
		{ID: AchievementFiveOrders, Name: "Pizza Lover 🔥", Description: "Complete 5 orders", Icon: "🔥"},
		{ID: AchievementTenOrders, Name: "Pizza Addict 😋", Description: "Complete 10 orders", Icon: "😋"},
		{ID: AchievementSpender100, Name: "Big Spender 💰", Description: "Spend €100 total", Icon: "💰"},
		{ID: AchievementReviewMaster, Name: "Review Master ⭐", Description: "Write 5 reviews", Icon: "⭐"},
		{ID: AchievementLoyalty100, Name: "Loyalty King 👑", Description: "Earn 100 loyalty points", Icon: "👑"},
	}
}
