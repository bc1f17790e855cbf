package checkout

import (
	"errors"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrSessionClosed       = errors.New("checkout session is closed")
	ErrPlacementInFlight   = errors.New("order placement already in progress")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrSessionNotFound     = errors.New("checkout session not found")
	IllegalTransitionError = errors.New("illegal transition of checkout step")
)

const (
	MsgRequiredFields  = "Please fill in all required fields."
	MsgAcceptTerms     = "Please accept the terms and conditions."
	MsgPaymentFailed   = "Payment failed. Please try again or use a different payment method."
	MsgInvalidShipping = "Please select a valid shipping option."
	MsgInvalidPayment  = "Please select a valid payment method."
)

// ValidationError blocks a single transition and names the offending fields.
type ValidationError struct {
	Step    domain.Step
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
