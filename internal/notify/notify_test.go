package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFeed_DrainPerRecipient(t *testing.T) {
	feed := NewFeed(5, 0)
	ctx := context.Background()

	feed.Notify(ctx, Notification{Recipient: "a", Title: "Added to cart"})
	feed.Notify(ctx, Notification{Recipient: "b", Title: "Cart cleared"})
	feed.Notify(ctx, Notification{Recipient: "a", Title: "Removed from cart"})

	got := feed.Drain("a")
	require.Len(t, got, 2)
	assert.Equal(t, "Added to cart", got[0].Title)
	assert.Equal(t, "Removed from cart", got[1].Title)
	assert.False(t, got[0].At.IsZero())

	assert.Empty(t, feed.Drain("a"), "drain forgets delivered notifications")
	assert.Len(t, feed.Drain("b"), 1)
}

func TestFeed_KeepsMostRecent(t *testing.T) {
	feed := NewFeed(3, 0)
	for i := 0; i < 5; i++ {
		feed.Notify(context.Background(), Notification{Recipient: "a", Title: fmt.Sprint(i)})
	}

	got := feed.Drain("a")
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].Title)
	assert.Equal(t, "4", got[2].Title)
}

func TestFeed_ExpiresUndrainedInboxes(t *testing.T) {
	feed := NewFeed(0, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		feed.Notify(ctx, Notification{Recipient: fmt.Sprintf("client-%d", i), Title: "Added to cart"})
	}
	require.Equal(t, 100, feed.Recipients())

	now = now.Add(2 * time.Minute)
	feed.Notify(ctx, Notification{Recipient: "client-new", Title: "Added to cart"})

	assert.Equal(t, 1, feed.Recipients())
	assert.Empty(t, feed.Drain("client-1"))
	assert.Len(t, feed.Drain("client-new"), 1)
}

func TestFeed_ExpiredInboxIsNotDelivered(t *testing.T) {
	feed := NewFeed(0, time.Minute)
	now := time.Now()
	feed.now = func() time.Time { return now }

	feed.Notify(context.Background(), Notification{Recipient: "a", Title: "Cart cleared"})
	now = now.Add(30 * time.Second)
	feed.Notify(context.Background(), Notification{Recipient: "a", Title: "Added to cart"})
	now = now.Add(45 * time.Second)

	assert.Len(t, feed.Drain("a"), 2, "an inbox written to recently is still live")

	feed.Notify(context.Background(), Notification{Recipient: "a", Title: "Removed from cart"})
	now = now.Add(2 * time.Minute)
	assert.Empty(t, feed.Drain("a"))
}

func TestFanout_And_LogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	feed := NewFeed(0, 0)
	sink := Fanout{NewLogSink(zap.New(core)), feed, nil}

	sink.Notify(context.Background(), Notification{Recipient: "a", Title: "Invalid promo code", Severity: SeverityError})

	assert.Len(t, feed.Drain("a"), 1)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "Invalid promo code", entries[0].ContextMap()["title"])
}
