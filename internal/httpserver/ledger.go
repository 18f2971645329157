package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pizza_shop/internal/ledger"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
)

// LedgerHTTP exposes the read side of the ledger plus the few writes a
// customer may trigger directly.
type LedgerHTTP struct {
	Ledger *ledger.Ledger
}

func internalError(c echo.Context, handler string, err error) error {
	logging.FromContext(c.Request().Context()).Error(handler+"_error", "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (h *LedgerHTTP) Orders(c echo.Context) error {
	orders, err := h.Ledger.GetOrders(c.Request().Context())
	if err != nil {
		return internalError(c, "orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *LedgerHTTP) ValidatePromo(c echo.Context) error {
	v, err := h.Ledger.ValidatePromoCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return internalError(c, "validate_promo", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *LedgerHTTP) Loyalty(c echo.Context) error {
	points, err := h.Ledger.GetLoyaltyPoints(c.Request().Context())
	if err != nil {
		return internalError(c, "loyalty", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"points": points,
		"euros":  ledger.PointsToEuros(points),
	})
}

func (h *LedgerHTTP) Redeem(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Points int `json:"points"`
	}
	if err := c.Bind(&req); err != nil || req.Points <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "points must be positive")
	}

	ok, err := h.Ledger.RedeemLoyaltyPoints(ctx, req.Points)
	if err != nil {
		return internalError(c, "redeem", err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, "not enough points")
	}

	points, err := h.Ledger.GetLoyaltyPoints(ctx)
	if err != nil {
		return internalError(c, "redeem", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"redeemed": req.Points,
		"euros":    ledger.PointsToEuros(req.Points),
		"points":   points,
	})
}

func (h *LedgerHTTP) Reviews(c echo.Context) error {
	reviews, err := h.Ledger.GetReviews(c.Request().Context(), c.QueryParam("item"))
	if err != nil {
		return internalError(c, "reviews", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *LedgerHTTP) AddReview(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		MenuItemID string `json:"menuItemId"`
		Rating     int    `json:"rating"`
		Text       string `json:"text"`
	}
	if err := c.Bind(&req); err != nil || req.MenuItemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "menuItemId is required")
	}

	_, ok, err := h.Ledger.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		return internalError(c, "add_review", err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	r, err := h.Ledger.AddReview(ctx, req.MenuItemID, req.Rating, req.Text)
	if err != nil {
		return internalError(c, "add_review", err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *LedgerHTTP) AverageRating(c echo.Context) error {
	r, err := h.Ledger.GetAverageRating(c.Request().Context(), c.Param("item"))
	if err != nil {
		return internalError(c, "average_rating", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *LedgerHTTP) Achievements(c echo.Context) error {
	list, err := h.Ledger.GetAchievements(c.Request().Context())
	if err != nil {
		return internalError(c, "achievements", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LedgerHTTP) CheckAchievements(c echo.Context) error {
	ids, err := h.Ledger.RefreshAchievements(c.Request().Context())
	if err != nil {
		return internalError(c, "check_achievements", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unlocked": ids})
}

func (h *LedgerHTTP) Stats(c echo.Context) error {
	s, err := h.Ledger.Stats(c.Request().Context())
	if err != nil {
		return internalError(c, "stats", err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *LedgerHTTP) Leaderboard(c echo.Context) error {
	entries, err := h.Ledger.Leaderboard(c.Request().Context(), c.QueryParam("sort"))
	if err != nil {
		if errors.Is(err, ledger.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "sort must be orders, spent or loyalty")
		}
		return internalError(c, "leaderboard", err)
	}
	return c.JSON(http.StatusOK, entries)
}
