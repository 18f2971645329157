package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pizza_shop/internal/storage"
)

type recordedEvent struct {
	topic string
	key   string
	event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{topic: topic, key: key, event: event.(map[string]any)})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event["type"].(string))
	}
	return out
}

type failingStore struct{ err error }

func (f failingStore) Read(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Write(context.Context, string, string) error     { return f.err }

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newTestLedger(t *testing.T) (*Ledger, *recordingPublisher, storage.Store) {
	t.Helper()
	st := storage.NewMemoryStore()
	pub := &recordingPublisher{}
	return &Ledger{
		Store:  st,
		Events: pub,
		Now:    func() time.Time { return fixedNow },
	}, pub, st
}

func TestLedger_StoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	l := &Ledger{Store: failingStore{err: boom}}
	ctx := context.Background()

	_, err := l.GetInventory(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = l.GetOrders(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = l.GetLoyaltyPoints(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = l.AddReview(ctx, "olives", 5, "nice")
	assert.ErrorIs(t, err, boom)
}

func TestLedger_PublishFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()

	l, pub, _ := newTestLedger(t)
	pub.err = errors.New("broker down")

	require.NoError(t, l.AddLoyaltyPoints(context.Background(), 10))

	points, err := l.GetLoyaltyPoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, points)
}

func TestLedger_NilPublisher(t *testing.T) {
	t.Parallel()

	l := &Ledger{Store: storage.NewMemoryStore()}
	assert.NoError(t, l.UpdateStock(context.Background(), "olives", 1))
}

type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) PublishEvent(ctx context.Context, _, _ string, _ any) error {
	p.entered <- struct{}{}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestLedger_SlowPublisherDoesNotBlockReads(t *testing.T) {
	t.Parallel()

	pub := &blockingPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	l := &Ledger{Store: storage.NewMemoryStore(), Events: pub}
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- l.AddLoyaltyPoints(ctx, 10) }()
	<-pub.entered

	read := make(chan int, 1)
	go func() {
		points, _ := l.GetLoyaltyPoints(ctx)
		read <- points
	}()

	select {
	case points := <-read:
		assert.Equal(t, 10, points)
	case <-time.After(time.Second):
		t.Fatal("read blocked behind event publishing")
	}

	close(pub.release)
	require.NoError(t, <-done)
}
