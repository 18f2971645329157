package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pizza_shop/internal/models"
	"github.com/Skotchmaster/pizza_shop/internal/mykafka"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func (l *Ledger) loadReviews(ctx context.Context) ([]models.Review, error) {
	reviews, _, err := storage.LoadJSON[[]models.Review](ctx, l.Store, storage.KeyReviews)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// GetReviews returns every review, or only those for menuItemID when it is not empty.
func (l *Ledger) GetReviews(ctx context.Context, menuItemID string) ([]models.Review, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reviews, err := l.loadReviews(ctx)
	if err != nil || menuItemID == "" {
		return reviews, err
	}

	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.MenuItemID == menuItemID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *Ledger) AddReview(ctx context.Context, menuItemID string, rating int, text string) (models.Review, error) {
	defer l.lock(ctx)()

	reviews, err := l.loadReviews(ctx)
	if err != nil {
		return models.Review{}, err
	}

	r := models.NewReview(uuid.NewString(), menuItemID, rating, text, l.now())
	reviews = append(reviews, r)
	if err := storage.SaveJSON(ctx, l.Store, storage.KeyReviews, reviews); err != nil {
		return models.Review{}, err
	}

	l.publish(ctx, mykafka.TopicReviews, menuItemID, map[string]any{
		"type":     "review_added",
		"reviewID": r.ID,
		"itemID":   menuItemID,
		"rating":   r.Rating,
	})
	return r, nil
}

func (l *Ledger) GetAverageRating(ctx context.Context, menuItemID string) (Rating, error) {
	reviews, err := l.GetReviews(ctx, menuItemID)
	if err != nil {
		return Rating{}, err
	}
	return averageOf(reviews), nil
}

func averageOf(reviews []models.Review) Rating {
	if len(reviews) == 0 {
		return Rating{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return Rating{
		Average: float64(sum) / float64(len(reviews)),
		Count:   len(reviews),
	}
}

// AverageRatings computes the rating of every reviewed item in one pass.
func (l *Ledger) AverageRatings(ctx context.Context) (map[string]Rating, error) {
	reviews, err := l.GetReviews(ctx, "")
	if err != nil {
		return nil, err
	}

	byItem := make(map[string][]models.Review)
	for _, r := range reviews {
		byItem[r.MenuItemID] = append(byItem[r.MenuItemID], r)
	}
	out := make(map[string]Rating, len(byItem))
	for id, rs := range byItem {
		out[id] = averageOf(rs)
	}
	return out, nil
}
