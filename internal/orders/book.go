// Package orders keeps placed orders for lookup and announces them to Kafka.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateID   = domain.ErrDuplicateOrder
)

// Book is the in-memory order lookup behind "view order".
type Book struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewBook() *Book {
	return &Book{orders: make(map[string]domain.Order)}
}

// Record stores the order. An id that is already taken is rejected with ErrDuplicateID.
func (b *Book) Record(_ context.Context, order domain.Order) error {
	if order.ID == "" {
		return errors.New("order id is required")
	}
	order.Lines = append([]domain.CartLine(nil), order.Lines...)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.orders[order.ID]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, order.ID)
	}
	b.orders[order.ID] = order
	return nil
}

func (b *Book) Get(id string) (domain.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	order, ok := b.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	order.Lines = append([]domain.CartLine(nil), order.Lines...)
	return order, nil
}

// ListByOwner returns the owner's orders, newest first.
func (b *Book) ListByOwner(owner string) []domain.Order {
	b.mu.RLock()
	out := make([]domain.Order, 0)
	for _, o := range b.orders {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].PlacedAt.After(out[j].PlacedAt)
	})
	return out
}
