package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultOwner is the anonymous single-user cart, stored under DefaultKey.
const DefaultOwner = "guest"

const (
	// DefaultIdleTTL is how long an unused cart stays in memory. It outlives a
	// checkout session so a live session never loses its cart.
	DefaultIdleTTL = time.Hour

	// DefaultCleanupInterval is how often idle carts are evicted.
	DefaultCleanupInterval = time.Minute
)

func KeyFor(owner string) string {
	if owner == "" || owner == DefaultOwner {
		return DefaultKey
	}
	return DefaultKey + ":" + owner
}

type RegistryConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// Registry hands out one Store per owner, opening each lazily. Stores idle for
// longer than the TTL are dropped from memory; their state stays in storage and
// is rehydrated on the next Get.
type Registry struct {
	deps     Deps
	ttl      time.Duration
	interval time.Duration

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group // collapses concurrent first opens of one cart

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewRegistry uses deps for every store it opens; Key and Recipient are set per owner.
// It starts the idle cleanup loop; Close stops it.
func NewRegistry(deps Deps, cfg RegistryConfig) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := &Registry{
		deps:        deps,
		ttl:         cfg.IdleTTL,
		interval:    cfg.CleanupInterval,
		stores:      make(map[string]*Store),
		stopCleanup: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.cleanupLoop()
	return r
}

func (r *Registry) Get(ctx context.Context, owner string) (*Store, error) {
	if owner == "" {
		owner = DefaultOwner
	}
	r.mu.RLock()
	s, ok := r.stores[owner]
	r.mu.RUnlock()
	if ok {
		s.touch()
		return s, nil
	}

	v, err, _ := r.sfg.Do(owner, func() (interface{}, error) {
		r.mu.RLock()
		s, ok := r.stores[owner]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}

		d := r.deps
		d.Key = KeyFor(owner)
		d.Recipient = owner
		s, err := Open(ctx, d)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.stores[owner] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s = v.(*Store)
	s.touch()
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops stores unused for longer than the TTL. A store with a write or
// a promo validation running is kept until the next pass.
func (r *Registry) evictIdle() {
	now := r.deps.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for owner, s := range r.stores {
		if now.Sub(s.LastUsed()) <= r.ttl || s.busy() {
			continue
		}
		delete(r.stores, owner)
		r.deps.Logger.Debug("idle cart evicted", zap.String("owner", owner))
	}
}

func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
	r.wg.Wait()
}
