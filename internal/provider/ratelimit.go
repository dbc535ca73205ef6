package provider

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateBudget is a provider's request budget: MaxRequests per Window seconds.
type RateBudget struct {
	MaxRequests   int
	WindowSeconds float64
}

// Limit converts the budget to a token refill rate.
func (b RateBudget) Limit() rate.Limit {
	if b.MaxRequests <= 0 || b.WindowSeconds <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(b.MaxRequests) / b.WindowSeconds)
}

// DefaultRateBudgets returns the documented per-provider budgets.
func DefaultRateBudgets() map[ProviderName]RateBudget {
	return map[ProviderName]RateBudget{
		NameMusicBrainz: {MaxRequests: 1, WindowSeconds: 1},
		NameLastFM:      {MaxRequests: 5, WindowSeconds: 1},
		NameGenius:      {MaxRequests: 60, WindowSeconds: 30},
	}
}

// RateLimiterMap holds one token bucket per provider, created once at
// startup and shared by every call to that provider for the life of
// the process. Acquisition never fails or drops; it only waits, bounded
// by the caller's context. Waiters are served in FIFO order.
type RateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[ProviderName]*rate.Limiter
}

// NewRateLimiterMap creates limiters from the given budgets. Providers
// absent from the map are unlimited.
func NewRateLimiterMap(budgets map[ProviderName]RateBudget) *RateLimiterMap {
	m := &RateLimiterMap{
		limiters: make(map[ProviderName]*rate.Limiter, len(budgets)),
	}
	for name, b := range budgets {
		m.limiters[name] = rate.NewLimiter(b.Limit(), 1)
	}
	return m
}

// Wait blocks until the rate limiter for the given provider allows a
// request, or the context is canceled.
func (m *RateLimiterMap) Wait(ctx context.Context, name ProviderName) error {
	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
