package orders

import (
	"context"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Recorder stores a placed order in the book and then announces it. A failed
// publish is logged; the order stays placed.
type Recorder struct {
	book      *Book
	publisher *Publisher
	logger    *zap.Logger
}

func NewRecorder(book *Book, publisher *Publisher, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{book: book, publisher: publisher, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, order domain.Order) error {
	if err := r.book.Record(ctx, order); err != nil {
		return err
	}
	if r.publisher == nil {
		return nil
	}
	if err := r.publisher.Publish(ctx, order); err != nil {
		r.logger.Warn("failed to publish order event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}
