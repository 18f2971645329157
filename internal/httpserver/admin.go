package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pizza_shop/internal/hash"
	"github.com/Skotchmaster/pizza_shop/internal/ledger"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/search"
	"github.com/Skotchmaster/pizza_shop/internal/tokens"
)

type AdminHTTP struct {
	Ledger       *ledger.Ledger
	Index        *search.Index
	JWTSecret    []byte
	PasswordHash string
}

func (h *AdminHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if !hash.CheckPassword(h.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid password")
	}

	exp := time.Now().Add(tokens.AccessTTL)
	token, err := tokens.NewAccessToken(tokens.RoleAdmin, "admin", exp, h.JWTSecret)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	csrf, err := newCSRFToken()
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, token, "/", exp))
	c.SetCookie(csrfCookie(csrf, exp))
	l.Info("login_successful")
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": token,
		"csrfToken":   csrf,
		"expiresAt":   exp.UnixMilli(),
	})
}

func (h *AdminHTTP) ReplaceInventory(c echo.Context) error {
	var items []models.MenuItem
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	for _, it := range items {
		if it.ID == "" || it.Price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "every item needs an id and a non-negative price")
		}
	}

	if err := h.Ledger.SaveInventory(c.Request().Context(), items); err != nil {
		return internalError(c, "replace_inventory", err)
	}
	return h.inventory(c)
}

func (h *AdminHTTP) SetStock(c echo.Context) error {
	var req struct {
		Stock *int `json:"stock"`
	}
	if err := c.Bind(&req); err != nil || req.Stock == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "stock is required")
	}
	return h.adjust(c, func(id string) error {
		return h.Ledger.SetStock(c.Request().Context(), id, *req.Stock)
	})
}

func (h *AdminHTTP) Restock(c echo.Context) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}
	return h.adjust(c, func(id string) error {
		return h.Ledger.RestoreStock(c.Request().Context(), id, req.Quantity)
	})
}

func (h *AdminHTTP) adjust(c echo.Context, apply func(id string) error) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if _, ok, err := h.Ledger.GetMenuItem(ctx, id); err != nil {
		return internalError(c, "adjust_stock", err)
	} else if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err := apply(id); err != nil {
		return internalError(c, "adjust_stock", err)
	}

	item, _, err := h.Ledger.GetMenuItem(ctx, id)
	if err != nil {
		return internalError(c, "adjust_stock", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *AdminHTTP) inventory(c echo.Context) error {
	items, err := h.Ledger.GetInventory(c.Request().Context())
	if err != nil {
		return internalError(c, "inventory", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHTTP) ReplacePromoCodes(c echo.Context) error {
	var codes []models.PromoCode
	if err := c.Bind(&codes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	for _, p := range codes {
		if p.Code == "" || (p.DiscountType != models.DiscountPercentage && p.DiscountType != models.DiscountFixed) {
			return echo.NewHTTPError(http.StatusBadRequest, "every code needs a code and a discount type of percentage or fixed")
		}
	}

	ctx := c.Request().Context()
	if err := h.Ledger.SavePromoCodes(ctx, codes); err != nil {
		return internalError(c, "replace_promo", err)
	}
	saved, err := h.Ledger.GetPromoCodes(ctx)
	if err != nil {
		return internalError(c, "replace_promo", err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *AdminHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var upd models.OrderUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if upd.Status != nil {
		switch *upd.Status {
		case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusFailed:
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		}
	}

	id := c.Param("id")
	if err := h.Ledger.UpdateOrder(ctx, id, upd); err != nil {
		return internalError(c, "update_order", err)
	}

	orders, err := h.Ledger.GetOrders(ctx)
	if err != nil {
		return internalError(c, "update_order", err)
	}
	for _, o := range orders {
		if o.ID == id {
			return c.JSON(http.StatusOK, o)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "order not found")
}

func (h *AdminHTTP) Reindex(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Ledger.GetInventory(ctx)
	if err != nil {
		return internalError(c, "reindex", err)
	}
	if err := h.Index.IndexItems(ctx, items); err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
		}
		logging.FromContext(ctx).Error("reindex_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "reindex failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"indexed": len(items)})
}
