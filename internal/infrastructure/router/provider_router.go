package router

import (
	"sync"

	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/logger"
)

// ProviderRouter hands out, per capability, the providers able to answer a
// query in their configured priority order
type ProviderRouter struct {
	mu        sync.RWMutex
	providers []provider.Provider
	priority  map[provider.Capability][]string
	logger    logger.Logger
}

// NewProviderRouter creates a new provider router
func NewProviderRouter(logger logger.Logger) *ProviderRouter {
	return &ProviderRouter{
		providers: make([]provider.Provider, 0),
		priority:  make(map[provider.Capability][]string),
		logger:    logger,
	}
}

// Register registers a provider. Registration order is the fallback order
// for capabilities without a configured priority.
func (r *ProviderRouter) Register(p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
	r.logger.Info("Registered provider", "provider", p.Name(), "capabilities", p.Capabilities())
}

// SetPriorities sets the provider order for every listed capability
func (r *ProviderRouter) SetPriorities(priorities map[provider.Capability][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for capability, names := range priorities {
		r.priority[capability] = append([]string(nil), names...)
	}
}

// Chain returns the providers declaring capability c. With a configured
// priority only the listed providers are returned, in that order.
func (r *ProviderRouter) Chain(c provider.Capability) []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names, configured := r.priority[c]
	if !configured {
		chain := make([]provider.Provider, 0, len(r.providers))
		for _, p := range r.providers {
			if provider.Supports(p, c) {
				chain = append(chain, p)
			}
		}
		return chain
	}

	chain := make([]provider.Provider, 0, len(names))
	for _, name := range names {
		p := r.lookup(name)
		if p == nil {
			r.logger.Debug("Configured provider not registered", "provider", name, "capability", c)
			continue
		}
		if !provider.Supports(p, c) {
			r.logger.Warn("Configured provider lacks capability", "provider", name, "capability", c)
			continue
		}
		chain = append(chain, p)
	}
	return chain
}

func (r *ProviderRouter) lookup(name string) provider.Provider {
	for _, p := range r.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}
