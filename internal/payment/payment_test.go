package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
)

type fixedRoller int

func (r fixedRoller) Roll() int { return int(r) }

func TestCalcResult(t *testing.T) {
	tests := []struct {
		name    string
		roll    int
		success bool
	}{
		{name: "lowest roll succeeds", roll: 0, success: true},
		{name: "last success roll", roll: 79, success: true},
		{name: "first decline roll", roll: 80, success: false},
		{name: "highest roll declines", roll: 99, success: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := calcResult(tt.roll, DefaultSuccessRate)
			assert.Equal(t, tt.success, res.Success)
			if !tt.success {
				assert.NotEmpty(t, res.DeclineReason)
			}
		})
	}
}

func TestSimulatedGateway_Success(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewSimulatedGateway(0, DefaultSuccessRate, WithRoller(fixedRoller(10)), WithClock(func() time.Time { return now }))

	res, err := g.AttemptPayment(context.Background(), Request{Reference: "r", AmountMinor: 100})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "TXN-1767323045000000000", res.TransactionID)
}

func TestSimulatedGateway_Decline(t *testing.T) {
	g := NewSimulatedGateway(0, DefaultSuccessRate, WithRoller(fixedRoller(95)))

	res, err := g.AttemptPayment(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.TransactionID)
}

func TestSimulatedGateway_HonoursDeadline(t *testing.T) {
	g := NewSimulatedGateway(time.Hour, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.AttemptPayment(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStaticGateway(t *testing.T) {
	ok := NewStaticGateway(true)
	res, err := ok.AttemptPayment(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, res.Success)

	declined := NewStaticGateway(false)
	res, err = declined.AttemptPayment(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, res.Success)

	broken := &StaticGateway{Err: errors.New("down")}
	_, err = broken.AttemptPayment(context.Background(), Request{})
	assert.Error(t, err)
	assert.Equal(t, 1, broken.Calls())
}

func TestBreakerGateway_TransportErrorsTrip(t *testing.T) {
	inner := &StaticGateway{Err: errors.New("connection refused")}
	cfg := circuitbreaker.DefaultConfig("payments")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	g := NewBreakerGateway(inner, cfg, nil)

	for i := 0; i < 2; i++ {
		_, err := g.AttemptPayment(context.Background(), Request{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrGatewayUnavailable)
	}

	_, err := g.AttemptPayment(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Equal(t, 2, inner.Calls())
	assert.Equal(t, gobreaker.StateOpen, g.State())
}

func TestBreakerGateway_DeclinesDoNotTrip(t *testing.T) {
	inner := NewStaticGateway(false)
	cfg := circuitbreaker.DefaultConfig("payments")
	cfg.ConsecutiveFailures = 1
	g := NewBreakerGateway(inner, cfg, nil)

	for i := 0; i < 3; i++ {
		res, err := g.AttemptPayment(context.Background(), Request{})
		require.NoError(t, err)
		assert.False(t, res.Success)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}
