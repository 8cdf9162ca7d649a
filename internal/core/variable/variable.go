// Package variable provides the mutable numeric containers that metrics
// accumulate statistics into. A Variable is owned by exactly one metric and
// shares its lifetime; mutation happens only on the accumulation path, so no
// internal locking is performed.
package variable

import (
	"fmt"
	"math"
)

// Initializer produces the initial contents of a variable
// PRINCIPLES:
// - ISP: Interface segregation with single method
// - DIP: Core domain depends on interface, not implementations
type Initializer interface {
	// Init returns the initial element values for the given shape and dtype
	Init(shape Shape, dtype DType) []float64
}

// Variable is a named, shaped, typed mutable numeric container
// PRINCIPLES:
// - KISS: Flat float64 backing storage, no tensor machinery
// - SRP: Only responsible for holding and mutating state values
type Variable struct {
	name      string
	shape     Shape
	dtype     DType
	trainable bool
	data      []float64
}

// Spec holds the parameters for the single variable creation entry point
type Spec struct {
	Name        string
	Shape       Shape
	DType       DType
	Trainable   bool
	Initializer Initializer
}

// New creates a variable and fills it through the provided initializer
func New(spec Spec) (*Variable, error) {
	if spec.Name == "" {
		return nil, ErrInvalidName
	}
	if err := spec.Shape.Validate(); err != nil {
		return nil, err
	}
	dtype := spec.DType.OrDefault()
	if err := dtype.Validate(); err != nil {
		return nil, err
	}
	if spec.Initializer == nil {
		return nil, ErrNilInitializer
	}

	v := &Variable{
		name:      spec.Name,
		shape:     spec.Shape.Clone(),
		dtype:     dtype,
		trainable: spec.Trainable,
		data:      make([]float64, spec.Shape.NumElements()),
	}
	if err := v.Assign(spec.Initializer.Init(v.shape, v.dtype)); err != nil {
		return nil, fmt.Errorf("initializer produced invalid values: %w", err)
	}
	return v, nil
}

// Name returns the variable name
func (v *Variable) Name() string { return v.name }

// Shape returns a copy of the variable shape
func (v *Variable) Shape() Shape { return v.shape.Clone() }

// DType returns the element type
func (v *Variable) DType() DType { return v.dtype }

// Trainable reports whether the variable participates in training.
// Metric state is always non-trainable.
func (v *Variable) Trainable() bool { return v.trainable }

// NumElements returns the total element count
func (v *Variable) NumElements() int { return v.shape.NumElements() }

// Value returns a copy of the current contents
func (v *Variable) Value() []float64 {
	out := make([]float64, len(v.data))
	copy(out, v.data)
	return out
}

// Scalar returns the value of a scalar variable
func (v *Variable) Scalar() (float64, error) {
	if !v.shape.IsScalar() {
		return 0, ErrNotScalar
	}
	return v.data[0], nil
}

// Assign replaces the contents with the given values
func (v *Variable) Assign(values []float64) error {
	if len(values) != len(v.data) {
		return fmt.Errorf("%w: got %d elements, want %d",
			ErrShapeMismatch, len(values), len(v.data))
	}
	for i, val := range values {
		v.data[i] = v.cast(val)
	}
	return nil
}

// AssignScalar sets the value of a scalar variable
func (v *Variable) AssignScalar(value float64) error {
	if !v.shape.IsScalar() {
		return ErrNotScalar
	}
	v.data[0] = v.cast(value)
	return nil
}

// AssignAdd accumulates the given values element-wise
func (v *Variable) AssignAdd(values []float64) error {
	if len(values) != len(v.data) {
		return fmt.Errorf("%w: got %d elements, want %d",
			ErrShapeMismatch, len(values), len(v.data))
	}
	for i, val := range values {
		v.data[i] = v.cast(v.data[i] + val)
	}
	return nil
}

// AddScalar accumulates a single value into a scalar variable
func (v *Variable) AddScalar(value float64) error {
	if !v.shape.IsScalar() {
		return ErrNotScalar
	}
	v.data[0] = v.cast(v.data[0] + value)
	return nil
}

// Zero resets every element to zero, preserving shape and dtype
func (v *Variable) Zero() {
	for i := range v.data {
		v.data[i] = 0
	}
}

// cast coerces a value to the variable dtype. Integer dtypes truncate.
func (v *Variable) cast(val float64) float64 {
	if v.dtype.IsInteger() {
		return math.Trunc(val)
	}
	return val
}

// String implements fmt.Stringer for debugging and logs
func (v *Variable) String() string {
	return fmt.Sprintf("Variable(name=%s, shape=%v, dtype=%s)", v.name, []int(v.shape), v.dtype)
}
