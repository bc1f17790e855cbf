package domain

import (
	"errors"
	"time"
)

// ErrDuplicateOrder is returned when an order id is already taken.
var ErrDuplicateOrder = errors.New("order id already recorded")

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

// Order is the snapshot taken when a checkout session places an order successfully.
type Order struct {
	ID               string        `json:"id"`
	Owner            string        `json:"owner"`
	Status           OrderStatus   `json:"status"`
	Lines            []CartLine    `json:"items"`
	Totals           Totals        `json:"totals"`
	PromoCode        string        `json:"promo_code,omitempty"`
	ShippingOptionID string        `json:"shipping_option"`
	ShippingAddress  string        `json:"shipping_address"`
	Email            string        `json:"email"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	TransactionID    string        `json:"transaction_id,omitempty"`
	PlacedAt         time.Time     `json:"placed_at"`
}
