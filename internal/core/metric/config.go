// Package metric provides metric identity serialization and rebuilding
package metric

import (
	"fmt"
	"sort"
	"sync"

	"github.com/metricflow/metricflow/internal/core/variable"
	"github.com/metricflow/metricflow/pkg/validation"
)

// Config is the serializable identity of a metric: name and dtype only.
// Accumulated state never travels through Config; rebuilding from it yields
// an equivalent fresh instance with zeroed variables.
type Config struct {
	Name  string `json:"name" validate:"required,metric_name"`
	DType string `json:"dtype,omitempty" validate:"omitempty,dtype"`
}

// Validate ensures config integrity: sentinel checks first, then the
// tag rules (metric_name, dtype) through the validation package
func (c Config) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	if c.DType != "" {
		if err := variable.DType(c.DType).Validate(); err != nil {
			return err
		}
	}
	if err := validation.ValidateWithPlayground(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return nil
}

// Options converts the config into construction options for NewBase
func (c Config) Options() []Option {
	opts := []Option{WithName(c.Name)}
	if c.DType != "" {
		opts = append(opts, WithDType(variable.DType(c.DType)))
	}
	return opts
}

// Builder rebuilds a concrete metric from its config
type Builder func(cfg Config) (Metric, error)

// Registry maps metric kinds to builders so that serialized configs can be
// turned back into live metrics
// PRINCIPLES:
// - OCP: New metric kinds register themselves, the registry never changes
// - DIP: Deserialization depends on Builder, not concrete metric types
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty metric kind registry
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder for a metric kind
func (r *Registry) Register(kind string, builder Builder) error {
	if kind == "" {
		return ErrInvalidKind
	}
	if builder == nil {
		return ErrNilBuilder
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.builders[kind] = builder
	return nil
}

// Build rebuilds a metric of the given kind from config
func (r *Registry) Build(kind string, cfg Config) (Metric, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	builder, exists := r.builders[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return builder(cfg)
}

// Kinds returns the registered kinds in sorted order
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.builders))
	for kind := range r.builders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// defaultRegistry serves package-level registration from metric packages
var defaultRegistry = NewRegistry()

// Register adds a builder to the default registry
func Register(kind string, builder Builder) error {
	return defaultRegistry.Register(kind, builder)
}

// FromConfig rebuilds a metric from the default registry
func FromConfig(kind string, cfg Config) (Metric, error) {
	return defaultRegistry.Build(kind, cfg)
}

// Kinds lists the kinds known to the default registry
func Kinds() []string {
	return defaultRegistry.Kinds()
}
