package orders

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
)

var errBrokerDown = errors.New("broker down")

type MockWriter struct {
	mu       sync.Mutex
	Messages []kafka.Message
	Err      error
	Closed   bool
}

func (w *MockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Messages = append(w.Messages, msgs...)
	return nil
}

func (w *MockWriter) Close() error {
	w.Closed = true
	return nil
}
