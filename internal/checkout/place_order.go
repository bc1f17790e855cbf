package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

// PlaceOrder charges the session's total through the gateway. Only one attempt may run at a
// time. On success the cart is reset and the session is confirmed; on failure the session
// stays on review with PaymentError set and every field kept for a retry.
func (f *Flow) PlaceOrder(ctx context.Context) error {
	f.mu.Lock()
	if err := f.checkMutable(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.session.Step != domain.StepReview {
		f.mu.Unlock()
		return IllegalTransitionError
	}
	if verr := guardAll(&f.session, domain.StepReview); verr != nil {
		f.mu.Unlock()
		return verr
	}
	summary := f.summary(f.session.Step, f.session.ShippingOptionID)
	if len(summary.Lines) == 0 {
		f.mu.Unlock()
		return ErrEmptyCart
	}
	f.session.Processing = true
	session := f.session
	f.mu.Unlock()

	log := logger.WithTrace(ctx, f.deps.Logger).With(zap.String("session", session.ID))
	req := payment.Request{
		Reference:   session.ID,
		AmountMinor: summary.Totals.TotalMinor,
		Currency:    f.deps.Currency,
		Method:      session.PaymentMethod,
		Email:       session.Contact.Email,
	}

	paymentCtx, cancel := context.WithTimeout(ctx, f.deps.PaymentTimeout)
	res, err := f.deps.Gateway.AttemptPayment(paymentCtx, req)
	cancel()

	if err != nil || !res.Success {
		reason := res.DeclineReason
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = "payment timed out"
		case err != nil:
			reason = err.Error()
		}
		log.Warn("payment failed", zap.String("reason", reason), zap.Int64("amount", req.AmountMinor))
		f.fail()
		f.deps.Notifier.Notify(ctx, notify.Notification{
			Recipient: session.Owner,
			Title:     "Payment failed",
			Message:   MsgPaymentFailed,
			Severity:  notify.SeverityError,
		})
		return fmt.Errorf("%w: %s", ErrPaymentFailed, reason)
	}

	// the payment is captured; what follows must not die with the caller's request
	bookCtx, cancelBook := context.WithTimeout(context.WithoutCancel(ctx), f.deps.BookkeepingTimeout)
	defer cancelBook()

	order := domain.Order{
		Owner:            session.Owner,
		Status:           domain.OrderStatusConfirmed,
		Lines:            summary.Lines,
		Totals:           summary.Totals,
		PromoCode:        summary.PromoCode,
		ShippingOptionID: summary.ShippingOption.ID,
		ShippingAddress:  session.ShippingAddress.String(),
		Email:            session.Contact.Email,
		PaymentMethod:    session.PaymentMethod,
		TransactionID:    res.TransactionID,
		PlacedAt:         f.deps.Now(),
	}
	orderID := f.record(bookCtx, log, order)
	if err := f.cart.Reset(bookCtx); err != nil {
		log.Error("failed to reset cart after order", zap.String("order_id", orderID), zap.Error(err))
	}

	f.mu.Lock()
	f.session.Processing = false
	f.session.PaymentError = ""
	f.session.OrderID = orderID
	f.session.Step = domain.StepConfirmation
	f.session.UpdatedAt = f.deps.Now()
	f.mu.Unlock()

	log.Info("order placed", zap.String("order_id", orderID), zap.Int64("total", order.Totals.TotalMinor))
	f.deps.Notifier.Notify(bookCtx, notify.Notification{
		Recipient: session.Owner,
		Title:     "Order placed",
		Message:   fmt.Sprintf("Your order %s has been placed.", orderID),
		Severity:  notify.SeveritySuccess,
	})
	return nil
}

// record stores the order under a fresh id, drawing another one while the id is taken.
// Other recording failures are logged, not returned. It returns the id the order got.
func (f *Flow) record(ctx context.Context, log *zap.Logger, order domain.Order) string {
	for attempt := 1; ; attempt++ {
		order.ID = f.deps.NewOrderID()
		if f.deps.Orders == nil {
			return order.ID
		}
		err := f.deps.Orders.Record(ctx, order)
		switch {
		case err == nil:
			return order.ID
		case errors.Is(err, domain.ErrDuplicateOrder) && attempt < maxOrderIDAttempts:
			log.Debug("order id taken, drawing another", zap.String("order_id", order.ID))
		default:
			log.Error("failed to record order", zap.String("order_id", order.ID), zap.Error(err))
			return order.ID
		}
	}
}

func (f *Flow) fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session.Processing = false
	f.session.PaymentError = MsgPaymentFailed
	f.session.UpdatedAt = f.deps.Now()
}
