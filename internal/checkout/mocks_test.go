package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// MockCart implements Cart with the default pricing rules.
type MockCart struct {
	mu       sync.Mutex
	Lines    []domain.CartLine
	Promo    string
	Resets   int
	ResetErr error
}

func newMockCart(lines ...domain.CartLine) *MockCart {
	return &MockCart{Lines: lines}
}

func (m *MockCart) Snapshot() ([]domain.CartLine, string, domain.Totals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rules := pricing.DefaultRules()
	subtotal := pricing.Subtotal(m.Lines)
	t := domain.Totals{
		SubtotalMinor: subtotal,
		DiscountMinor: rules.Discount(m.Promo, subtotal),
		ShippingMinor: rules.Shipping(subtotal),
		TaxMinor:      rules.Tax(subtotal),
	}
	t.TotalMinor = pricing.Total(t.SubtotalMinor, t.ShippingMinor, t.TaxMinor, t.DiscountMinor)
	return append([]domain.CartLine(nil), m.Lines...), m.Promo, t
}

func (m *MockCart) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
	if m.ResetErr != nil {
		return m.ResetErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Lines = nil
	m.Promo = ""
	return nil
}

func (m *MockCart) resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Resets
}

// MockGateway answers with Result/Err. When Block is set, it waits for a value on Block or
// for the context to end.
type MockGateway struct {
	mu       sync.Mutex
	Result   payment.Result
	Err      error
	Block    chan struct{}
	Started  chan struct{}
	Requests []payment.Request
}

func (m *MockGateway) AttemptPayment(ctx context.Context, req payment.Request) (payment.Result, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	block, started := m.Block, m.Started
	res, err := m.Result, m.Err
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return payment.Result{}, ctx.Err()
		}
	}
	return res, err
}

func (m *MockGateway) set(res payment.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Result, m.Err = res, err
}

func (m *MockGateway) requests() []payment.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payment.Request(nil), m.Requests...)
}

// MockOrders records placed orders and rejects an id it has already seen.
type MockOrders struct {
	mu       sync.Mutex
	Orders   []domain.Order
	Err      error
	Attempts int
}

func (m *MockOrders) Record(ctx context.Context, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, seen := range m.Orders {
		if seen.ID == o.ID {
			return domain.ErrDuplicateOrder
		}
	}
	m.Orders = append(m.Orders, o)
	return m.Err
}

// CancellingGateway approves the payment after cancelling the caller's context,
// like a client that hangs up while the charge is in flight.
type CancellingGateway struct {
	Cancel context.CancelFunc
}

func (g CancellingGateway) AttemptPayment(context.Context, payment.Request) (payment.Result, error) {
	g.Cancel()
	return approve, nil
}

// sequenceIDs hands out ids in order, repeating the last one.
func sequenceIDs(ids ...string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[min(next, len(ids)-1)]
		next++
		return id
	}
}

var errGatewayDown = errors.New("gateway unreachable")

var approve = payment.Result{Success: true, TransactionID: "TXN-1"}
var decline = payment.Result{DeclineReason: "insufficient funds"}
