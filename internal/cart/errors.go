package cart

import "errors"

var (
	ErrPromoInFlight      = errors.New("promo code application already in progress")
	ErrPromoAlreadyActive = errors.New("a promo code is already active")
	ErrInvalidPromo       = errors.New("invalid promo code")
)
