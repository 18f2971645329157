// Package search finds menu items, either by filtering the inventory in
// memory or through a full-text Elasticsearch index of the menu.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/models"
)

var ErrUnavailable = errors.New("search index unavailable")

const searchTimeout = 10 * time.Second

func NewClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx)
	l.Info("es_connecting", "url", url)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("es_info_error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	l.Info("es_connected", "url", url)
	return client, nil
}

type Result struct {
	Total int64             `json:"total"`
	Items []models.MenuItem `json:"items"`
}

type Index struct {
	ES   *elasticsearch.Client
	Name string

	group singleflight.Group
}

// IndexItems writes every item into the index under its id, replacing what
// was there, and refreshes so the next search sees them.
func (ix *Index) IndexItems(ctx context.Context, items []models.MenuItem) error {
	if ix == nil || ix.ES == nil {
		return ErrUnavailable
	}
	if len(items) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, it := range items {
		meta := map[string]any{"index": map[string]any{"_index": ix.Name, "_id": it.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(it); err != nil {
			return fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	res, err := ix.ES.Bulk(&buf,
		ix.ES.Bulk.WithContext(ctx),
		ix.ES.Bulk.WithIndex(ix.Name),
		ix.ES.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.Status())
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("bulk index: some items were rejected")
	}

	logging.FromContext(ctx).Info("menu_indexed", "index", ix.Name, "items", len(items))
	return nil
}

// Search runs a fuzzy multi_match over name and description. Identical
// queries in flight at the same time share one request.
func (ix *Index) Search(ctx context.Context, text string, from, size int) (Result, error) {
	if ix == nil || ix.ES == nil {
		return Result{}, ErrUnavailable
	}

	key := fmt.Sprintf("%s|%d|%d", strings.ToLower(strings.TrimSpace(text)), from, size)
	// The shared request outlives any single caller; each caller still
	// stops waiting when its own ctx ends.
	ch := ix.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), searchTimeout)
		defer cancel()
		return ix.search(sctx, text, from, size)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

func (ix *Index) search(ctx context.Context, text string, from, size int) (Result, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Result{}, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return Result{}, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.MenuItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.MenuItem, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return Result{Total: r.Hits.Total.Value, Items: items}, nil
}
