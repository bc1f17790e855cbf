package payment

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
)

// BreakerGateway guards a gateway with a circuit breaker. Only transport errors count
// as failures; declines pass through untouched.
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[Result]
}

func NewBreakerGateway(next Gateway, cfg circuitbreaker.Config, logger *zap.Logger) *BreakerGateway {
	return &BreakerGateway{
		next: next,
		cb:   circuitbreaker.New[Result](cfg, logger),
	}
}

func (g *BreakerGateway) AttemptPayment(ctx context.Context, req Request) (Result, error) {
	res, err := g.cb.Execute(func() (Result, error) {
		return g.next.AttemptPayment(ctx, req)
	})
	if circuitbreaker.IsOpen(err) {
		return Result{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return res, err
}

func (g *BreakerGateway) State() gobreaker.State {
	return g.cb.State()
}
