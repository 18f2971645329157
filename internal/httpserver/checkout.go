package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pizza_shop/internal/checkout"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/payment"
)

type CheckoutHTTP struct {
	Svc *checkout.Service
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	var req checkout.Request
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Checkout(ctx, req)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, res)
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, checkout.ErrInvalidPromo):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrOutOfStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"message": err.Error(),
			"order":   res.Order,
		})
	default:
		l.Error("checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

type PaymentHTTP struct {
	Circle *payment.CircleProvider
}

func (h *PaymentHTTP) CreateWallet(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_wallet")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	w, err := h.Circle.CreateWallet(ctx, req.Email)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "Valid email required")
		}
		l.Error("create_wallet_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, w)
}
