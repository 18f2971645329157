// Package ledger owns the persisted business state of the storefront:
// inventory, order history, promo codes, loyalty points, reviews and
// achievements. Every operation reads the current collection from the
// store, computes a new one and writes it back whole.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/pizza_shop/internal/logging"
	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

var ErrValidation = errors.New("validation")

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Ledger serialises load/mutate/save cycles within one process. Writers in
// other processes sharing the same store are not coordinated: last write wins.
type Ledger struct {
	Store  storage.Store
	Events Publisher
	Now    func() time.Time

	mu      sync.Mutex
	pending []pendingEvent
}

type pendingEvent struct {
	topic string
	key   string
	event map[string]any
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// lock takes l.mu and returns its release. Events queued by publish while the
// lock is held are sent after it is released.
func (l *Ledger) lock(ctx context.Context) func() {
	l.mu.Lock()
	return func() {
		events := l.pending
		l.pending = nil
		l.mu.Unlock()
		for _, e := range events {
			l.send(ctx, e)
		}
	}
}

// publish queues an event; l.mu must be held.
func (l *Ledger) publish(_ context.Context, topic, key string, event map[string]any) {
	if l.Events == nil {
		return
	}
	l.pending = append(l.pending, pendingEvent{topic: topic, key: key, event: event})
}

func (l *Ledger) send(ctx context.Context, e pendingEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.Events.PublishEvent(ctx, e.topic, e.key, e.event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", e.topic, "type", e.event["type"], "error", err)
	}
}
