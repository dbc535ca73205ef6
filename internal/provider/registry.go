package provider

import "sync"

// Registry holds the registered provider adapters and knows which of
// them is structurally authoritative. The primary provider supplies
// identity and release structure; every other registered provider is
// an enrichment source.
type Registry struct {
	mu        sync.RWMutex
	primary   ProviderName
	providers map[ProviderName]Provider
}

// NewRegistry creates an empty registry with the given primary provider.
func NewRegistry(primary ProviderName) *Registry {
	return &Registry{
		primary:   primary,
		providers: make(map[ProviderName]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name, or nil if not registered.
func (r *Registry) Get(name ProviderName) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// Primary returns the authoritative provider, or nil if it was never
// registered.
func (r *Registry) Primary() Provider {
	return r.Get(r.primary)
}

// All returns all registered providers in a stable order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Provider
	for _, name := range AllProviderNames() {
		if p, ok := r.providers[name]; ok {
			result = append(result, p)
		}
	}
	return result
}

// Enrichment returns all registered providers except the primary.
func (r *Registry) Enrichment() []Provider {
	var result []Provider
	for _, p := range r.All() {
		if p.Name() != r.primary {
			result = append(result, p)
		}
	}
	return result
}
