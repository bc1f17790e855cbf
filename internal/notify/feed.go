package notify

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultFeedCapacity = 20

	// DefaultFeedRetention is how long undrained notifications are kept.
	DefaultFeedRetention = time.Hour
)

type inbox struct {
	items   []Notification
	updated time.Time
}

// Feed buffers the most recent notifications per recipient until the
// presentation layer drains them. Inboxes nobody drains expire after the
// retention period; expired ones are swept as new notifications arrive.
type Feed struct {
	mu        sync.Mutex
	capacity  int
	retention time.Duration
	pending   map[string]*inbox
	lastSweep time.Time
	now       func() time.Time
}

func NewFeed(capacity int, retention time.Duration) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	if retention <= 0 {
		retention = DefaultFeedRetention
	}
	return &Feed{
		capacity:  capacity,
		retention: retention,
		pending:   make(map[string]*inbox),
		now:       time.Now,
	}
}

func (f *Feed) Notify(_ context.Context, n Notification) {
	now := f.now()
	if n.At.IsZero() {
		n.At = now.UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if now.Sub(f.lastSweep) >= f.retention {
		f.sweepLocked(now)
	}

	box := f.pending[n.Recipient]
	if box == nil {
		box = &inbox{}
		f.pending[n.Recipient] = box
	}
	box.items = append(box.items, n)
	if len(box.items) > f.capacity {
		box.items = box.items[len(box.items)-f.capacity:]
	}
	box.updated = now
}

// Drain returns and forgets the pending notifications of a recipient, oldest first.
func (f *Feed) Drain(recipient string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	box := f.pending[recipient]
	delete(f.pending, recipient)
	if box == nil || f.now().Sub(box.updated) > f.retention {
		return []Notification{}
	}
	return box.items
}

// Recipients is the number of inboxes currently held.
func (f *Feed) Recipients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Feed) sweepLocked(now time.Time) {
	for recipient, box := range f.pending {
		if now.Sub(box.updated) > f.retention {
			delete(f.pending, recipient)
		}
	}
	f.lastSweep = now
}
