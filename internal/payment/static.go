package payment

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StaticGateway always answers the same way. Err, when set, takes precedence over Succeed.
type StaticGateway struct {
	Succeed bool
	Err     error

	calls atomic.Int64
}

func NewStaticGateway(succeed bool) *StaticGateway {
	return &StaticGateway{Succeed: succeed}
}

func (g *StaticGateway) AttemptPayment(ctx context.Context, req Request) (Result, error) {
	n := g.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if g.Err != nil {
		return Result{}, g.Err
	}
	if !g.Succeed {
		return Result{DeclineReason: "declined"}, nil
	}
	return Result{Success: true, TransactionID: fmt.Sprintf("TXN-STATIC-%d", n)}, nil
}

func (g *StaticGateway) Calls() int {
	return int(g.calls.Load())
}
