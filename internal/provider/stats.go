package provider

import "sync"

// RequestStats counts the requests issued on behalf of one provider.
type RequestStats struct {
	Requests int64 `json:"requests"`
	Failures int64 `json:"failures"`
	Retries  int64 `json:"retries"`
}

// Stats accumulates per-provider request counters. Safe for concurrent
// use; the Executor records into it as attempts run.
type Stats struct {
	mu       sync.Mutex
	counters map[ProviderName]*RequestStats
}

// NewStats creates an empty stats collector.
func NewStats() *Stats {
	return &Stats{counters: make(map[ProviderName]*RequestStats)}
}

func (s *Stats) record(name ProviderName, failed, retried bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters[name]
	if c == nil {
		c = &RequestStats{}
		s.counters[name] = c
	}
	c.Requests++
	if failed {
		c.Failures++
	}
	if retried {
		c.Retries++
	}
}

// Snapshot returns a copy of the per-provider counters.
func (s *Stats) Snapshot() map[ProviderName]RequestStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[ProviderName]RequestStats, len(s.counters))
	for name, c := range s.counters {
		out[name] = *c
	}
	return out
}
