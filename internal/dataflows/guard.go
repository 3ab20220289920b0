package dataflows

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Observer is notified after every guarded provider call.
type Observer func(provider string, err error)

var observer Observer

// SetObserver installs a hook for provider call accounting. Pass nil to
// remove it. Not safe to call while collections are running.
func SetObserver(fn Observer) {
	observer = fn
}

// ProviderGuard wraps outbound provider calls with a rate limiter and a
// circuit breaker so one misbehaving upstream cannot stall a whole
// collection pass.
type ProviderGuard struct {
	name    string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewProviderGuard builds a guard allowing rps requests per second with
// the given burst. The breaker opens after five consecutive failures and
// probes again after thirty seconds.
func NewProviderGuard(name string, rps float64, burst int) *ProviderGuard {
	return &ProviderGuard{
		name:    name,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Do waits for rate-limit headroom and runs fn through the breaker.
func (g *ProviderGuard) Do(ctx context.Context, fn func() error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if observer != nil {
		observer(g.name, err)
	}
	return err
}
