package search

import (
	"slices"
	"strings"

	"github.com/Skotchmaster/pizza_shop/internal/models"
)

const (
	SortName      = "name"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"

	CategoryAll = "all"
)

type Query struct {
	Text     string
	Category string
	SortBy   string
}

// Filter narrows items to those whose name or category contains q.Text,
// ignoring case, and that belong to q.Category. Empty or "all" matches every
// category. ratings maps item ids to average rating and is only read for
// SortRating. items is not modified.
func Filter(items []models.MenuItem, q Query, ratings map[string]float64) []models.MenuItem {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if text != "" &&
			!strings.Contains(strings.ToLower(it.Name), text) &&
			!strings.Contains(strings.ToLower(string(it.Category)), text) {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && string(it.Category) != q.Category {
			continue
		}
		out = append(out, it)
	}

	var cmp func(a, b models.MenuItem) int
	switch q.SortBy {
	case SortPriceAsc:
		cmp = func(a, b models.MenuItem) int { return compareFloat(a.Price, b.Price) }
	case SortPriceDesc:
		cmp = func(a, b models.MenuItem) int { return compareFloat(b.Price, a.Price) }
	case SortRating:
		cmp = func(a, b models.MenuItem) int { return compareFloat(ratings[b.ID], ratings[a.ID]) }
	default:
		cmp = func(a, b models.MenuItem) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Categories lists the distinct categories of items in sorted order.
func Categories(items []models.MenuItem) []string {
	var out []string
	for _, it := range items {
		c := string(it.Category)
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// Page turns a 1-based page number and a page size into an offset and limit.
// Out-of-range sizes fall back to 10.
func Page(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size
}
