// Package payment defines the payment gateway port used by checkout and its simulated implementations.
package payment

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type Request struct {
	Reference   string
	AmountMinor int64
	Currency    string
	Method      domain.PaymentMethod
	Email       string
}

// Result of a payment attempt. A decline is a Result with Success false and a nil error;
// errors are reserved for transport failures.
type Result struct {
	Success       bool
	TransactionID string
	DeclineReason string
}

type Gateway interface {
	AttemptPayment(ctx context.Context, req Request) (Result, error)
}
