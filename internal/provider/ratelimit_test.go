package provider

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestRateBudgetLimit(t *testing.T) {
	b := RateBudget{MaxRequests: 60, WindowSeconds: 30}
	if got := float64(b.Limit()); got != 2 {
		t.Errorf("expected 2 req/s, got %v", got)
	}
	if got := (RateBudget{}).Limit(); got != rate.Inf {
		t.Errorf("expected zero budget to be unlimited, got %v", got)
	}
}

func TestWaitUnknownProviderIsUnlimited(t *testing.T) {
	m := NewRateLimiterMap(nil)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := m.Wait(context.Background(), NameGenius); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unlimited provider waited %v", elapsed)
	}
}

func TestWaitEnforcesBudgetUnderConcurrency(t *testing.T) {
	// 50 req/s budget; 11 concurrent acquisitions need at least
	// 10 refill intervals (200ms) beyond the initial token.
	m := NewRateLimiterMap(map[ProviderName]RateBudget{
		NameMusicBrainz: {MaxRequests: 50, WindowSeconds: 1},
	})

	const callers = 11
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Wait(context.Background(), NameMusicBrainz); err != nil {
				t.Errorf("Wait: %v", err)
			}
		}()
	}
	wg.Wait()

	minElapsed := time.Duration(callers-1) * (time.Second / 50)
	if elapsed := time.Since(start); elapsed < minElapsed-20*time.Millisecond {
		t.Errorf("%d acquisitions completed in %v, budget requires at least %v", callers, elapsed, minElapsed)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	m := NewRateLimiterMap(map[ProviderName]RateBudget{
		NameMusicBrainz: {MaxRequests: 1, WindowSeconds: 60},
	})

	// Drain the single token.
	if err := m.Wait(context.Background(), NameMusicBrainz); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx, NameMusicBrainz); err == nil {
		t.Fatal("expected context error while waiting for a token")
	}
}
