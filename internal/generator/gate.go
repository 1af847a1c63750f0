package generator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the minimum spacing between two service calls.
const DefaultCooldown = time.Second

// Gate enforces a minimum interval between outbound calls. It is safe for
// concurrent use; callers queue in Wait.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate admitting one call per cooldown. A non-positive
// cooldown disables spacing.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{limiter: rate.NewLimiter(limitFor(cooldown), 1)}
}

// Wait blocks until the next call may proceed or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// SetCooldown changes the spacing for subsequent calls.
func (g *Gate) SetCooldown(cooldown time.Duration) {
	g.limiter.SetLimit(limitFor(cooldown))
}

func limitFor(cooldown time.Duration) rate.Limit {
	if cooldown <= 0 {
		return rate.Inf
	}
	return rate.Every(cooldown)
}

var sharedGate = NewGate(DefaultCooldown)

// SharedGate returns the process-wide gate every Orchestrator uses unless
// another one is injected.
func SharedGate() *Gate {
	return sharedGate
}
