package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is the durable key-value port the cart persists through.
// Consumers depend on this interface, not on a concrete backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
