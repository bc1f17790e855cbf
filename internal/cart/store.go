// Package cart owns cart contents, the active promo code and all cart pricing.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

const (
	DefaultKey          = "cart"
	DefaultPromoLatency = time.Second

	promoKeySuffix = ":promo"
)

type Deps struct {
	Storage  storage.Store
	Rules    pricing.Rules
	Notifier notify.Sink
	Logger   *zap.Logger
	// Key under which lines are stored; the promo code lives at Key+":promo".
	Key string
	// Recipient of notifications emitted by this cart.
	Recipient    string
	PromoLatency time.Duration
	Now          func() time.Time
}

// Store is the single writer of one cart. Mutations are serialised; each one
// persists the new state before it becomes visible to readers.
type Store struct {
	key          string
	recipient    string
	storage      storage.Store
	rules        pricing.Rules
	notifier     notify.Sink
	logger       *zap.Logger
	promoLatency time.Duration

	writeMu sync.Mutex

	mu    sync.RWMutex // guards lines and promo
	lines []domain.CartLine
	promo string

	promoInFlight atomic.Bool

	now      func() time.Time
	lastUsed atomic.Int64 // unix nanos
}

// Open rehydrates the cart stored under d.Key. Missing or corrupt data yields an empty cart.
func Open(ctx context.Context, d Deps) (*Store, error) {
	if d.Storage == nil {
		return nil, errors.New("cart: storage is required")
	}
	if d.Key == "" {
		d.Key = DefaultKey
	}
	if d.Rules.Promos == nil {
		d.Rules = pricing.DefaultRules()
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	s := &Store{
		key:          d.Key,
		recipient:    d.Recipient,
		storage:      d.Storage,
		rules:        d.Rules,
		notifier:     d.Notifier,
		logger:       d.Logger.With(zap.String("cart", d.Key)),
		promoLatency: d.PromoLatency,
		now:          d.Now,
	}
	s.touch()
	if err := s.rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

// LastUsed is when the cart was last opened, handed out by a Registry or read by checkout.
func (s *Store) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// busy reports whether a write or a promo validation is running.
func (s *Store) busy() bool {
	if s.promoInFlight.Load() {
		return true
	}
	if !s.writeMu.TryLock() {
		return true
	}
	s.writeMu.Unlock()
	return false
}

func (s *Store) rehydrate(ctx context.Context) error {
	data, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load cart %q: %w", s.key, err)
	default:
		lines, decodeErr := DecodeLines(data)
		if decodeErr != nil {
			s.logger.Warn("stored cart is corrupt, starting empty", zap.Error(decodeErr))
		} else {
			s.lines = normalize(lines)
		}
	}

	promo, err := s.storage.Get(ctx, s.promoKey())
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load promo code %q: %w", s.key, err)
	default:
		code, _, lookupErr := s.rules.LookupPromo(string(promo))
		if lookupErr != nil {
			s.logger.Warn("stored promo code is not in the catalog, dropping it", zap.String("code", string(promo)))
		} else {
			s.promo = code
		}
	}
	return nil
}

func (s *Store) promoKey() string {
	return s.key + promoKeySuffix
}

// Key is the storage key of the cart lines.
func (s *Store) Key() string {
	return s.key
}

// AddItem merges quantity into the line for item's (productId, variant), creating it when absent.
// A non-positive quantity is a no-op.
func (s *Store) AddItem(ctx context.Context, item domain.Item, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	lines := s.Lines()
	if i := indexOf(lines, item.Key()); i >= 0 {
		lines[i].Quantity += quantity
	} else {
		lines = append(lines, item.Line(quantity))
	}
	if err := s.commitLines(ctx, lines); err != nil {
		return err
	}

	s.notify(ctx, notify.Notification{
		Title:    "Added to cart",
		Message:  fmt.Sprintf("%dx %s has been added to your cart.", quantity, item.Name),
		Severity: notify.SeveritySuccess,
	})
	return nil
}

// RemoveItem deletes the line for (productID, variant). Absent lines are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID int64, variant string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.removeLocked(ctx, domain.LineKey{ProductID: productID, Variant: variant})
}

func (s *Store) removeLocked(ctx context.Context, key domain.LineKey) error {
	lines := s.Lines()
	i := indexOf(lines, key)
	if i < 0 {
		return nil
	}
	if err := s.commitLines(ctx, slices.Delete(lines, i, i+1)); err != nil {
		return err
	}

	s.notify(ctx, notify.Notification{
		Title:    "Removed from cart",
		Message:  "Item has been removed from your cart.",
		Severity: notify.SeverityInfo,
	})
	return nil
}

// UpdateQuantity sets the absolute quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int, variant string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := domain.LineKey{ProductID: productID, Variant: variant}
	if quantity <= 0 {
		return s.removeLocked(ctx, key)
	}
	lines := s.Lines()
	i := indexOf(lines, key)
	if i < 0 {
		return nil
	}
	lines[i].Quantity = quantity
	return s.commitLines(ctx, lines)
}

// ClearCart empties the lines. The active promo code stays.
func (s *Store) ClearCart(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.commitLines(ctx, []domain.CartLine{}); err != nil {
		return err
	}
	s.notify(ctx, notify.Notification{
		Title:    "Cart cleared",
		Message:  "All items have been removed from your cart.",
		Severity: notify.SeverityInfo,
	})
	return nil
}

// Reset empties the lines and drops the promo code, without notifying.
func (s *Store) Reset(ctx context.Context) error {
	s.touch()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	previousPromo := s.promo
	s.mu.RUnlock()

	if previousPromo != "" {
		if err := s.storage.Delete(ctx, s.promoKey()); err != nil {
			return fmt.Errorf("reset promo code: %w", err)
		}
	}
	data, err := EncodeLines(nil)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		if previousPromo != "" {
			if restoreErr := s.storage.Set(ctx, s.promoKey(), []byte(previousPromo)); restoreErr != nil {
				s.logger.Error("failed to restore promo code after reset failure", zap.Error(restoreErr))
			}
		}
		return fmt.Errorf("reset cart: %w", err)
	}

	s.mu.Lock()
	s.lines = nil
	s.promo = ""
	s.mu.Unlock()
	return nil
}

// ApplyPromoCode activates a promo code after a simulated lookup delay. Only one
// application may run at a time and only one code may be active.
func (s *Store) ApplyPromoCode(ctx context.Context, code string) error {
	if !s.promoInFlight.CompareAndSwap(false, true) {
		return ErrPromoInFlight
	}
	defer s.promoInFlight.Store(false)

	if s.ActivePromoCode() != "" {
		s.notifyPromoActive(ctx)
		return ErrPromoAlreadyActive
	}

	if s.promoLatency > 0 {
		timer := time.NewTimer(s.promoLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.ActivePromoCode() != "" {
		s.notifyPromoActive(ctx)
		return ErrPromoAlreadyActive
	}
	normalized, _, err := s.rules.LookupPromo(code)
	if err != nil {
		s.notify(ctx, notify.Notification{
			Title:    "Invalid promo code",
			Message:  "The code you entered is not valid.",
			Severity: notify.SeverityError,
		})
		return ErrInvalidPromo
	}

	if err := s.storage.Set(ctx, s.promoKey(), []byte(normalized)); err != nil {
		return fmt.Errorf("save promo code: %w", err)
	}
	s.mu.Lock()
	s.promo = normalized
	s.mu.Unlock()

	s.notify(ctx, notify.Notification{
		Title:    "Promo code applied",
		Message:  "Your discount has been applied to the order.",
		Severity: notify.SeveritySuccess,
	})
	return nil
}

func (s *Store) notifyPromoActive(ctx context.Context) {
	s.notify(ctx, notify.Notification{
		Title:    "Promo code already applied",
		Message:  "Only one promo code can be active at a time.",
		Severity: notify.SeverityError,
	})
}

// commitLines writes lines durably and then publishes them. Callers hold writeMu.
func (s *Store) commitLines(ctx context.Context, lines []domain.CartLine) error {
	data, err := EncodeLines(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist cart", zap.Error(err))
		return fmt.Errorf("save cart: %w", err)
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

func (s *Store) notify(ctx context.Context, n notify.Notification) {
	n.Recipient = s.recipient
	s.notifier.Notify(ctx, n)
}

func indexOf(lines []domain.CartLine, key domain.LineKey) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.Key() == key })
}
