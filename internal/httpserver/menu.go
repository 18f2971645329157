package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pizza_shop/internal/ledger"
	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/search"
)

type MenuHTTP struct {
	Ledger *ledger.Ledger
	Index  *search.Index
}

type menuItemView struct {
	models.MenuItem
	Rating ledger.Rating `json:"rating"`
}

func (h *MenuHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.list")

	items, err := h.Ledger.GetInventory(ctx)
	if err != nil {
		l.Error("menu_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	ratings, err := h.Ledger.AverageRatings(ctx)
	if err != nil {
		l.Error("menu_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	averages := make(map[string]float64, len(ratings))
	for id, r := range ratings {
		averages[id] = r.Average
	}
	filtered := search.Filter(items, search.Query{
		Text:     c.QueryParam("q"),
		Category: c.QueryParam("category"),
		SortBy:   c.QueryParam("sort"),
	}, averages)

	out := make([]menuItemView, len(filtered))
	for i, it := range filtered {
		out[i] = menuItemView{MenuItem: it, Rating: ratings[it.ID]}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      out,
		"categories": search.Categories(items),
	})
}

func (h *MenuHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := search.Page(page, size)

	res, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
		}
		l.Error("menu_search_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search failed")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MenuHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.get")

	id := c.Param("id")
	item, ok, err := h.Ledger.GetMenuItem(ctx, id)
	if err != nil {
		l.Error("menu_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	rating, err := h.Ledger.GetAverageRating(ctx, id)
	if err != nil {
		l.Error("menu_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, menuItemView{MenuItem: item, Rating: rating})
}
