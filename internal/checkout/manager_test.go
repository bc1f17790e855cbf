package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/identity"
)

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

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	carts := func(context.Context, string) (Cart, error) { return newMockCart(chairLine), nil }
	m, err := NewManager(carts, identity.ContextProvider{}, ManagerConfig{
		SessionTTL:      time.Minute,
		CleanupInterval: time.Hour,
	}, Deps{Gateway: &MockGateway{Result: approve}, Now: clock.Now})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Now()})
	user := &identity.User{ID: "1", Name: "John Kamau", Email: "user@example.com"}
	ctx := identity.WithUser(context.Background(), user)

	flow, err := m.Create(ctx, "1")
	require.NoError(t, err)
	s := flow.Snapshot()
	_, err = uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.Equal(t, "John", s.Contact.FirstName)

	got, err := m.Get(s.ID, "1")
	require.NoError(t, err)
	assert.Same(t, flow, got)

	_, err = m.Get(s.ID, "someone-else")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get("missing", "1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := newTestManager(t, clock)
	ctx := context.Background()

	idle, err := m.Create(ctx, "guest")
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	active, err := m.Create(ctx, "guest")
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	m.expireSessions()

	_, err = m.Get(idle.Snapshot().ID, "guest")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(active.Snapshot().ID, "guest")
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManager_CartResolverError(t *testing.T) {
	boom := errors.New("storage down")
	m, err := NewManager(func(context.Context, string) (Cart, error) { return nil, boom }, nil, ManagerConfig{}, Deps{Gateway: &MockGateway{}})
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Create(context.Background(), "guest")
	assert.ErrorIs(t, err, boom)
}

func TestNewManager_RequiresCollaborators(t *testing.T) {
	_, err := NewManager(nil, nil, ManagerConfig{}, Deps{Gateway: &MockGateway{}})
	assert.Error(t, err)

	_, err = NewManager(func(context.Context, string) (Cart, error) { return nil, nil }, nil, ManagerConfig{}, Deps{})
	assert.Error(t, err)
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Now()})
	m.Close()
	m.Close()
}
