package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultLatency     = 2 * time.Second
	DefaultSuccessRate = 0.8
)

var declineReasons = []string{
	"insufficient funds",
	"card declined by issuer",
	"transaction limit exceeded",
	"unknown reason",
}

// Roller yields a number in [0, 100).
type Roller interface {
	Roll() int
}

type RandomRoller struct{}

func (RandomRoller) Roll() int {
	return rand.IntN(100)
}

// SimulatedGateway waits a fixed latency and then succeeds with the configured probability.
type SimulatedGateway struct {
	latency     time.Duration
	successRate float64
	roller      Roller
	now         func() time.Time
	logger      *zap.Logger
}

type SimulatedOption func(*SimulatedGateway)

func WithRoller(r Roller) SimulatedOption {
	return func(g *SimulatedGateway) { g.roller = r }
}

func WithClock(now func() time.Time) SimulatedOption {
	return func(g *SimulatedGateway) { g.now = now }
}

func WithLogger(l *zap.Logger) SimulatedOption {
	return func(g *SimulatedGateway) { g.logger = l }
}

func NewSimulatedGateway(latency time.Duration, successRate float64, opts ...SimulatedOption) *SimulatedGateway {
	g := &SimulatedGateway{
		latency:     latency,
		successRate: successRate,
		roller:      RandomRoller{},
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SimulatedGateway) AttemptPayment(ctx context.Context, req Request) (Result, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	res := calcResult(g.roller.Roll(), g.successRate)
	if res.Success {
		res.TransactionID = fmt.Sprintf("TXN-%d", g.now().UnixNano())
	}
	g.logger.Debug("simulated payment attempt",
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.AmountMinor),
		zap.String("method", string(req.Method)),
		zap.Bool("success", res.Success))
	return res, nil
}

func calcResult(roll int, successRate float64) Result {
	threshold := int(successRate*100 + 0.5)
	if roll < threshold {
		return Result{Success: true}
	}
	return Result{DeclineReason: declineReasons[roll%len(declineReasons)]}
}
