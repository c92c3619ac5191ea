package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/zippay/wallet-service/internal/domain"
)

// SettlementGateway settles a payment against the external rail (bank, card
// network, operator). It returns the gateway's settlement reference on
// success. A decline is reported as ErrSettlementDeclined; any other error is
// an infrastructure failure and the attempt may be retried.
type SettlementGateway interface {
	Settle(ctx context.Context, t *domain.Transaction) (string, error)
}

// SimulatedGateway models an external settlement rail with a fixed processing
// delay and a configurable decline rate. It is safe for concurrent use and
// holds no state between calls.
type SimulatedGateway struct {
	delay       time.Duration
	declineRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedGateway(delay time.Duration, declineRate float64) *SimulatedGateway {
	return &SimulatedGateway{
		delay:       delay,
		declineRate: declineRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *SimulatedGateway) Settle(ctx context.Context, t *domain.Transaction) (string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("settlement interrupted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	g.mu.Lock()
	draw := g.rng.Float64()
	g.mu.Unlock()
	if draw < g.declineRate {
		return "", ErrSettlementDeclined
	}

	ref := "GTW" + strings.ToUpper(fmt.Sprintf("%08x", g.rngUint32()))
	return ref, nil
}

func (g *SimulatedGateway) rngUint32() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Uint32()
}
