package strategy

import (
	"fmt"
)

// Factory creates a strategy instance from the provided configuration.
type Factory func(cfg *InstanceConfig) (Strategy, error)

// Registry maps strategy names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry initializes a strategy registry with all built in strategies
// registered.
func NewRegistry() *Registry {
	registry := &Registry{
		factories: make(map[string]Factory),
	}

	registry.Register(MTFConfluenceName, NewMTFConfluence)
	registry.Register(VolatilityExpansionName, NewVolatilityExpansion)
	registry.Register(MomentumName, NewMomentum)
	registry.Register(ATRBreakoutName, NewATRBreakout)
	registry.Register(VolumeRangeBreakoutName, NewVolumeRangeBreakout)
	registry.Register(LowVolMomentumName, NewLowVolMomentum)

	return registry
}

// Register adds the provided factory under the provided name, replacing any
// existing registration.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// New creates a strategy instance for the provided configuration.
func (r *Registry) New(cfg *InstanceConfig) (Strategy, error) {
	factory, ok := r.factories[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %q", cfg.Name)
	}

	return factory(cfg)
}
