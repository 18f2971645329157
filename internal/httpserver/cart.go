package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pizza_shop/internal/cart"
	"github.com/Skotchmaster/pizza_shop/internal/ledger"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
)

type CartHTTP struct {
	Cart   *cart.Cart
	Ledger *ledger.Ledger
}

type cartView struct {
	Items     []models.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func newCartView(items []models.CartItem) cartView {
	return cartView{Items: items, Total: cart.Total(items), ItemCount: cart.ItemCount(items)}
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	items, err := h.Cart.Items(ctx)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, newCartView(items))
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req struct {
		MenuItemID string `json:"menuItemId"`
		Quantity   int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, ok, err := h.Ledger.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	line, err := models.NewCartItem(item, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.Cart.Add(ctx, line)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("cart_item_added", "item_id", item.ID, "quantity", req.Quantity)
	return c.JSON(http.StatusCreated, newCartView(items))
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity is required")
	}

	items, err := h.Cart.UpdateQuantity(ctx, c.Param("id"), *req.Quantity)
	if err != nil {
		return cartError(l, "update_cart_error", err)
	}
	return c.JSON(http.StatusOK, newCartView(items))
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	items, err := h.Cart.Remove(ctx, c.Param("id"))
	if err != nil {
		return cartError(l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, newCartView(items))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Cart.Clear(ctx); err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	l.Info("cart successfully cleared")
	return c.JSON(http.StatusOK, newCartView([]models.CartItem{}))
}

func cartError(l *slog.Logger, event string, err error) error {
	if errors.Is(err, cart.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	}
	l.Error(event, "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
