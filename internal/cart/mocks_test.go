package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

var (
	errWriteFailed = errors.New("disk full")
	errReadFailed  = errors.New("connection reset")
)

// flakyStorage wraps a memory store and fails operations on demand.
type flakyStorage struct {
	*storage.MemoryStore
	failWrites atomic.Bool
	failReads  atomic.Bool
	gets       atomic.Int32
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{MemoryStore: storage.NewMemoryStore()}
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets.Add(1)
	if f.failReads.Load() {
		return nil, errReadFailed
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites.Load() {
		return errWriteFailed
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *flakyStorage) Delete(ctx context.Context, key string) error {
	if f.failWrites.Load() {
		return errWriteFailed
	}
	return f.MemoryStore.Delete(ctx, key)
}

type recordingSink struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingSink) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingSink) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Title)
	}
	return out
}

func (r *recordingSink) last() notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return notify.Notification{}
	}
	return r.sent[len(r.sent)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
