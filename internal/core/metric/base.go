// Package metric provides the embeddable base shared by all metrics
package metric

import (
	"context"
	"fmt"

	"github.com/metricflow/metricflow/internal/core/initializer"
	"github.com/metricflow/metricflow/internal/core/variable"
	"github.com/metricflow/metricflow/internal/infrastructure/naming"
	"github.com/metricflow/metricflow/internal/infrastructure/telemetry"
)

// Base carries the identity, state registries, and tracking shared by every
// metric. Concrete metrics embed *Base and must construct it with NewBase
// before creating any state; state-creating calls on a zero or nil Base fail
// with ErrBaseNotInitialized.
// PRINCIPLES:
// - SRP: Bookkeeping only - accumulation logic lives in concrete metrics
// - OCP: Concrete metrics extend by embedding, never by modifying Base
type Base struct {
	kind      string
	name      string
	dtype     variable.DType
	variables []*variable.Variable
	children  []Metric
	tracker   *Tracker
}

// Option configures a Base during construction
type Option func(*options)

type options struct {
	name  string
	dtype variable.DType
}

// WithName sets an explicit metric name instead of an auto-generated one
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDType sets the dtype of the metric result
func WithDType(dtype variable.DType) Option {
	return func(o *options) { o.dtype = dtype }
}

// NewBase constructs the shared metric base. kind identifies the concrete
// metric type ("sum", "binary_accuracy", ...) and seeds the auto-generated
// name when none is given.
func NewBase(kind string, opts ...Option) (*Base, error) {
	if kind == "" {
		return nil, ErrInvalidKind
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dtype := o.dtype.OrDefault()
	if err := dtype.Validate(); err != nil {
		return nil, err
	}

	name := o.name
	if name == "" {
		name = naming.AutoName(kind)
	}

	b := &Base{
		kind:  kind,
		name:  name,
		dtype: dtype,
	}
	b.tracker = NewTracker()
	b.tracker.AddRule(CategoryVariables,
		func(v any) bool { _, ok := v.(*variable.Variable); return ok },
		func(v any) { b.variables = append(b.variables, v.(*variable.Variable)) },
	)
	b.tracker.AddRule(CategoryMetrics,
		func(v any) bool { _, ok := v.(Metric); return ok },
		func(v any) { b.children = append(b.children, v.(Metric)) },
	)
	return b, nil
}

// initialized reports whether NewBase completed for this instance
func (b *Base) initialized() bool {
	return b != nil && b.tracker != nil
}

// base implements the Metric interface hook
func (b *Base) base() *Base { return b }

// Kind returns the concrete metric kind
func (b *Base) Kind() string {
	if b == nil {
		return ""
	}
	return b.kind
}

// Name returns the metric instance name
func (b *Base) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// DType returns the dtype of the metric result
func (b *Base) DType() variable.DType {
	if b == nil {
		return ""
	}
	return b.dtype
}

// VariableSpec holds the parameters for AddVariable. Initializer accepts a
// concrete initializer, a name such as "zeros", or nil for zeros.
type VariableSpec struct {
	Name        string
	Shape       variable.Shape
	DType       variable.DType
	Initializer any
}

// AddVariable creates one non-trainable state variable, registers it as
// owned, and returns it.
func (b *Base) AddVariable(spec VariableSpec) (*variable.Variable, error) {
	if !b.initialized() {
		return nil, ErrBaseNotInitialized
	}

	init, err := initializer.Get(spec.Initializer)
	if err != nil {
		return nil, err
	}

	dtype := spec.DType
	if dtype == "" {
		dtype = b.dtype
	}
	name := spec.Name
	if name == "" {
		name = naming.AutoName("variable")
	}

	v, err := variable.New(variable.Spec{
		Name:        name,
		Shape:       spec.Shape,
		DType:       dtype,
		Trainable:   false,
		Initializer: init,
	})
	if err != nil {
		return nil, err
	}

	b.variables = append(b.variables, v)
	// Prevent double-tracking through a later Track call
	b.tracker.MarkSeen(CategoryVariables, v)
	return v, nil
}

// AddWeight creates one state variable.
//
// Deprecated: use AddVariable.
func (b *Base) AddWeight(spec VariableSpec) (*variable.Variable, error) {
	return b.AddVariable(spec)
}

// Track classifies value and registers any state variables or child metrics
// found in it, exactly once each. It returns value unchanged so constructors
// can write `m.child = m.Track(child).(Metric)` style assignments.
func (b *Base) Track(value any) any {
	if !b.initialized() {
		return value
	}
	return b.tracker.Track(value)
}

// RegisterVariable registers an externally created state variable as owned
func (b *Base) RegisterVariable(v *variable.Variable) error {
	if !b.initialized() {
		return ErrBaseNotInitialized
	}
	if v == nil {
		return ErrNilVariable
	}
	b.tracker.Track(v)
	return nil
}

// RegisterChild registers a child metric. The effective variable set of the
// parent then includes the child's own variables.
func (b *Base) RegisterChild(m Metric) error {
	if !b.initialized() {
		return ErrBaseNotInitialized
	}
	if m == nil {
		return ErrNilMetric
	}
	if m.base() == b {
		return ErrSelfChild
	}
	b.tracker.Track(m)
	return nil
}

// Variables returns the effective variable set: own variables followed by
// each child's own variables, in registration order. The slice is rebuilt on
// every call.
func (b *Base) Variables() []*variable.Variable {
	if b == nil {
		return nil
	}
	out := make([]*variable.Variable, 0, len(b.variables))
	out = append(out, b.variables...)
	for _, child := range b.children {
		out = append(out, child.base().ownVariables()...)
	}
	return out
}

// ownVariables returns only the variables this metric created or registered
func (b *Base) ownVariables() []*variable.Variable {
	if b == nil {
		return nil
	}
	return b.variables
}

// Children returns the registered child metrics in registration order
func (b *Base) Children() []Metric {
	if b == nil {
		return nil
	}
	out := make([]Metric, len(b.children))
	copy(out, b.children)
	return out
}

// ResetState zeroes every effective variable. Called by the host training
// loop between evaluation epochs/steps.
func (b *Base) ResetState() error {
	if !b.initialized() {
		return ErrBaseNotInitialized
	}
	for _, v := range b.Variables() {
		v.Zero()
	}
	telemetry.MetricReset(b.kind)
	return nil
}

// UpdateState accumulates one batch of statistics. Concrete metrics must
// override it; the default reports the missing implementation.
func (b *Base) UpdateState(ctx context.Context, batch Batch) error {
	return fmt.Errorf("UpdateState for metric %q: %w", b.Name(), ErrNotImplemented)
}

// Result reduces current state into a value. Concrete metrics must override
// it; the default reports the missing implementation.
func (b *Base) Result() (Value, error) {
	return Value{}, fmt.Errorf("Result for metric %q: %w", b.Name(), ErrNotImplemented)
}

// Config returns the serializable identity of the metric: name and dtype
// only, never accumulated state.
func (b *Base) Config() Config {
	if b == nil {
		return Config{}
	}
	return Config{Name: b.name, DType: string(b.dtype)}
}
