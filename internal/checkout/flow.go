// Package checkout runs the multi-step checkout: information, shipping, payment,
// review and confirmation.
package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

const (
	DefaultPaymentTimeout = 10 * time.Second

	// DefaultBookkeepingTimeout bounds recording the order and emptying the cart once
	// the payment went through.
	DefaultBookkeepingTimeout = 5 * time.Second

	maxOrderIDAttempts = 5
)

// Cart is what checkout needs from the cart store.
type Cart interface {
	Snapshot() ([]domain.CartLine, string, domain.Totals)
	Reset(ctx context.Context) error
}

// OrderRecorder receives every successfully placed order.
type OrderRecorder interface {
	Record(ctx context.Context, order domain.Order) error
}

type Deps struct {
	Gateway        payment.Gateway
	Orders         OrderRecorder
	Notifier       notify.Sink
	Logger         *zap.Logger
	PaymentTimeout time.Duration

	BookkeepingTimeout time.Duration
	// Currency sent to the gateway with the amount.
	Currency   string
	NewOrderID func() string
	Now        func() time.Time
}

func (d *Deps) setDefaults() {
	if d.Notifier == nil {
		d.Notifier = notify.Discard{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.PaymentTimeout <= 0 {
		d.PaymentTimeout = DefaultPaymentTimeout
	}
	if d.BookkeepingTimeout <= 0 {
		d.BookkeepingTimeout = DefaultBookkeepingTimeout
	}
	if d.Currency == "" {
		d.Currency = "KES"
	}
	if d.NewOrderID == nil {
		d.NewOrderID = RandomOrderID
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// RandomOrderID returns ORD- followed by a number in [100000, 999999].
func RandomOrderID() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.IntN(900000))
}

// Summary is the live order summary shown next to every checkout step.
type Summary struct {
	Lines          []domain.CartLine `json:"items"`
	PromoCode      string            `json:"promoCode,omitempty"`
	ShippingOption ShippingOption    `json:"shippingOption"`
	Totals         domain.Totals     `json:"totals"`
}

// Flow is one checkout session bound to one cart.
type Flow struct {
	deps Deps
	cart Cart

	mu      sync.Mutex
	session Session
}

// NewFlow starts a session at the information step with standard shipping and card payment
// preselected. A known user prefills the contact fields.
func NewFlow(id, owner string, cart Cart, user *identity.User, deps Deps) *Flow {
	deps.setDefaults()
	now := deps.Now()
	s := Session{
		ID:               id,
		Owner:            owner,
		Step:             domain.StepInformation,
		ShippingOptionID: ShippingStandard,
		PaymentMethod:    domain.PaymentCreditCard,
		PaymentDetails:   NewPaymentDetails(domain.PaymentCreditCard),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if user != nil {
		s.Contact.FirstName, s.Contact.LastName = user.SplitName()
		s.Contact.Email = user.Email
	}
	return &Flow{
		deps:    deps,
		cart:    cart,
		session: s,
	}
}

func (f *Flow) Snapshot() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Summary derives totals from the cart at call time. From the shipping step on the
// selected shipping option replaces the cart's own shipping charge.
func (f *Flow) Summary() Summary {
	f.mu.Lock()
	step, optionID := f.session.Step, f.session.ShippingOptionID
	f.mu.Unlock()
	return f.summary(step, optionID)
}

func (f *Flow) summary(step domain.Step, optionID string) Summary {
	lines, promo, totals := f.cart.Snapshot()
	option, ok := lookupShippingOption(optionID, totals.ShippingMinor)
	if !ok {
		option, _ = lookupShippingOption(ShippingStandard, totals.ShippingMinor)
	}
	if step.AtOrAfter(domain.StepShipping) {
		totals.ShippingMinor = option.PriceMinor
		totals.TotalMinor = pricing.Total(totals.SubtotalMinor, totals.ShippingMinor, totals.TaxMinor, totals.DiscountMinor)
	}
	return Summary{Lines: lines, PromoCode: promo, ShippingOption: option, Totals: totals}
}

// ShippingOptions lists the options priced against the bound cart.
func (f *Flow) ShippingOptions() []ShippingOption {
	_, _, totals := f.cart.Snapshot()
	return ShippingOptions(totals.ShippingMinor)
}

// mutate applies fn under the lock once the session is known to accept edits.
func (f *Flow) mutate(fn func(s *Session) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkMutable(); err != nil {
		return err
	}
	if err := fn(&f.session); err != nil {
		return err
	}
	f.session.UpdatedAt = f.deps.Now()
	return nil
}

func (f *Flow) checkMutable() error {
	if f.session.Step.IsTerminal() {
		return ErrSessionClosed
	}
	if f.session.Processing {
		return ErrPlacementInFlight
	}
	return nil
}

func (f *Flow) SetContact(c Contact) error {
	return f.mutate(func(s *Session) error {
		s.Contact = c
		return nil
	})
}

func (f *Flow) SetShippingAddress(a ShippingAddress) error {
	return f.mutate(func(s *Session) error {
		s.ShippingAddress = a
		return nil
	})
}

func (f *Flow) SelectShippingOption(id string) error {
	return f.mutate(func(s *Session) error {
		if _, ok := lookupShippingOption(id, 0); !ok {
			return &ValidationError{Step: s.Step, Fields: []string{"shippingOption"}, Message: MsgInvalidShipping}
		}
		s.ShippingOptionID = id
		return nil
	})
}

// SelectPaymentMethod switches method; details reset to the new method's empty variant.
func (f *Flow) SelectPaymentMethod(m domain.PaymentMethod) error {
	return f.mutate(func(s *Session) error {
		if !m.Valid() {
			return &ValidationError{Step: s.Step, Fields: []string{"paymentMethod"}, Message: MsgInvalidPayment}
		}
		if s.PaymentMethod != m || s.PaymentDetails == nil {
			s.PaymentMethod = m
			s.PaymentDetails = NewPaymentDetails(m)
		}
		return nil
	})
}

// SetPaymentDetails stores d and selects its method.
func (f *Flow) SetPaymentDetails(d PaymentDetails) error {
	return f.mutate(func(s *Session) error {
		if d == nil {
			return &ValidationError{Step: s.Step, Fields: []string{"paymentMethod"}, Message: MsgInvalidPayment}
		}
		s.PaymentMethod = d.Method()
		s.PaymentDetails = d
		return nil
	})
}

func (f *Flow) AcceptTerms(accepted bool) error {
	return f.mutate(func(s *Session) error {
		s.AcceptedTerms = accepted
		return nil
	})
}

// Next advances one step once the current step's guard passes. From review it places the order.
func (f *Flow) Next(ctx context.Context) error {
	f.mu.Lock()
	if err := f.checkMutable(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.session.Step == domain.StepReview {
		f.mu.Unlock()
		return f.PlaceOrder(ctx)
	}
	defer f.mu.Unlock()

	from := f.session.Step
	if verr := guard(&f.session, from); verr != nil {
		return verr
	}
	to, ok := from.Next()
	if !ok || !domain.CanTransitionTo(from, to) {
		return IllegalTransitionError
	}
	f.session.Step = to
	f.session.UpdatedAt = f.deps.Now()
	f.deps.Logger.Debug("checkout step advanced",
		zap.String("session", f.session.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	return nil
}

// Previous goes back one step from shipping, payment or review.
func (f *Flow) Previous() error {
	return f.mutate(func(s *Session) error {
		to, ok := s.Step.Previous()
		if !ok || !domain.CanTransitionTo(s.Step, to) {
			return IllegalTransitionError
		}
		s.Step = to
		return nil
	})
}
