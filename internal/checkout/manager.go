package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/identity"
)

const (
	// DefaultSessionTTL is how long an untouched session is kept.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs.
	DefaultCleanupInterval = time.Minute
)

// CartResolver returns the cart of an owner.
type CartResolver func(ctx context.Context, owner string) (Cart, error)

type ManagerConfig struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

type entry struct {
	flow     *Flow
	lastSeen time.Time
}

// Manager keeps checkout sessions in memory and expires idle ones.
type Manager struct {
	deps     Deps
	carts    CartResolver
	identity identity.Provider
	ttl      time.Duration
	interval time.Duration

	mu       sync.RWMutex
	sessions map[string]*entry

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewManager starts the background cleanup loop; Close stops it.
func NewManager(carts CartResolver, ident identity.Provider, cfg ManagerConfig, deps Deps) (*Manager, error) {
	if carts == nil {
		return nil, errors.New("checkout: cart resolver is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("checkout: payment gateway is required")
	}
	deps.setDefaults()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if ident == nil {
		ident = identity.ContextProvider{}
	}

	m := &Manager{
		deps:        deps,
		carts:       carts,
		identity:    ident,
		ttl:         cfg.SessionTTL,
		interval:    cfg.CleanupInterval,
		sessions:    make(map[string]*entry),
		stopCleanup: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.cleanupLoop()
	return m, nil
}

// Create opens a session for owner's cart, prefilled from the current user when known.
func (m *Manager) Create(ctx context.Context, owner string) (*Flow, error) {
	c, err := m.carts(ctx, owner)
	if err != nil {
		return nil, err
	}
	user, _ := m.identity.CurrentUser(ctx)
	flow := NewFlow(uuid.New().String(), owner, c, user, m.deps)

	m.mu.Lock()
	m.sessions[flow.session.ID] = &entry{flow: flow, lastSeen: m.deps.Now()}
	m.mu.Unlock()

	m.deps.Logger.Info("checkout session created", zap.String("session", flow.session.ID), zap.String("owner", owner))
	return flow, nil
}

// Get returns the session if it exists and belongs to owner, and refreshes its TTL.
func (m *Manager) Get(id, owner string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok || e.flow.session.Owner != owner {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = m.deps.Now()
	return e.flow, nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireSessions()
		case <-m.stopCleanup:
			return
		}
	}
}

// expireSessions drops sessions idle for longer than the TTL. A session that is
// placing an order is kept until the attempt resolves.
func (m *Manager) expireSessions() {
	now := m.deps.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) <= m.ttl {
			continue
		}
		if e.flow.Snapshot().Processing {
			continue
		}
		delete(m.sessions, id)
		m.deps.Logger.Debug("checkout session expired", zap.String("session", id))
	}
}

func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
	m.wg.Wait()
}
