package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	MenuHandler     *MenuHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	LedgerHandler   *LedgerHTTP
	PaymentHandler  *PaymentHTTP
	AdminHandler    *AdminHTTP
	JWTSecret       []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api/v1")

	api.GET("/menu", d.MenuHandler.List)
	api.GET("/menu/search", d.MenuHandler.Search)
	api.GET("/menu/:id", d.MenuHandler.Get)

	api.GET("/cart", d.CartHandler.Get)
	api.POST("/cart", d.CartHandler.Add)
	api.DELETE("/cart", d.CartHandler.Clear)
	api.PATCH("/cart/:id", d.CartHandler.UpdateQuantity)
	api.DELETE("/cart/:id", d.CartHandler.Remove)

	api.POST("/checkout", d.CheckoutHandler.Checkout)
	api.POST("/payments/circle/wallet", d.PaymentHandler.CreateWallet)

	api.GET("/orders", d.LedgerHandler.Orders)
	api.GET("/promo/:code", d.LedgerHandler.ValidatePromo)
	api.GET("/loyalty", d.LedgerHandler.Loyalty)
	api.POST("/loyalty/redeem", d.LedgerHandler.Redeem)
	api.GET("/reviews", d.LedgerHandler.Reviews)
	api.POST("/reviews", d.LedgerHandler.AddReview)
	api.GET("/reviews/:item/average", d.LedgerHandler.AverageRating)
	api.GET("/achievements", d.LedgerHandler.Achievements)
	api.POST("/achievements/check", d.LedgerHandler.CheckAchievements)
	api.GET("/stats", d.LedgerHandler.Stats)
	api.GET("/leaderboard", d.LedgerHandler.Leaderboard)

	api.POST("/admin/login", d.AdminHandler.Login)

	admin := api.Group("/admin")
	admin.Use(RequireAdmin(d.JWTSecret), RequireCSRF)

	admin.PUT("/inventory", d.AdminHandler.ReplaceInventory)
	admin.PATCH("/inventory/:id", d.AdminHandler.SetStock)
	admin.POST("/inventory/:id/restock", d.AdminHandler.Restock)
	admin.PUT("/promo", d.AdminHandler.ReplacePromoCodes)
	admin.PATCH("/orders/:id", d.AdminHandler.UpdateOrder)
	admin.POST("/search/reindex", d.AdminHandler.Reindex)
}
