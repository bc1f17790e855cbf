package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	DefaultTopic    = "orders.placed"
	EventTypeHeader = "event_type"
	EventPlaced     = "order.placed"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type eventItem struct {
	ProductID      int64  `json:"product_id"`
	Variant        string `json:"variant,omitempty"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceMinor int64  `json:"unit_price"`
}

// PlacedEvent is the payload of an order.placed message.
type PlacedEvent struct {
	OrderID       string      `json:"order_id"`
	Owner         string      `json:"owner"`
	Items         []eventItem `json:"items"`
	TotalMinor    int64       `json:"total_amount"`
	Currency      string      `json:"currency"`
	PaymentMethod string      `json:"payment_method"`
	PlacedAt      time.Time   `json:"placed_at"`
}

func newPlacedEvent(order domain.Order, currency string) PlacedEvent {
	items := make([]eventItem, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, eventItem{
			ProductID:      l.ProductID,
			Variant:        l.Variant,
			ProductName:    l.Name,
			Quantity:       l.Quantity,
			UnitPriceMinor: l.UnitPriceMinor,
		})
	}
	return PlacedEvent{
		OrderID:       order.ID,
		Owner:         order.Owner,
		Items:         items,
		TotalMinor:    order.Totals.TotalMinor,
		Currency:      currency,
		PaymentMethod: string(order.PaymentMethod),
		PlacedAt:      order.PlacedAt,
	}
}

type Publisher struct {
	writer   MessageWriter
	currency string
	logger   *zap.Logger
}

// NewPublisher returns a publisher writing to the given brokers. With no brokers
// the publisher is disabled and Publish does nothing.
func NewPublisher(brokers []string, topic, currency string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topic == "" {
		topic = DefaultTopic
	}
	p := &Publisher{currency: currency, logger: logger}
	if len(brokers) == 0 {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return p
}

func NewPublisherWithWriter(w MessageWriter, currency string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, currency: currency, logger: logger}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) Publish(ctx context.Context, order domain.Order) error {
	if p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(newPlacedEvent(order, p.currency))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(EventPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	p.logger.Debug("order event published", zap.String("order_id", order.ID))
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
