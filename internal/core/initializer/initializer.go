// Package initializer provides pluggable strategies that produce the initial
// value of a metric state variable. Initializers are resolved by name through
// a small factory so that metric constructors can declare state with a plain
// string ("zeros") or a concrete implementation interchangeably.
package initializer

import (
	"fmt"

	"github.com/metricflow/metricflow/internal/core/variable"
)

// Zeros fills every element with zero
// PRINCIPLES:
// - KISS: The common case for accumulator state
// - SRP: Only produces initial values
type Zeros struct{}

// NewZeros creates a new zeros initializer
func NewZeros() *Zeros {
	return &Zeros{}
}

// Init returns a zero-filled buffer for the shape
func (z *Zeros) Init(shape variable.Shape, dtype variable.DType) []float64 {
	return make([]float64, shape.NumElements())
}

// Ones fills every element with one
type Ones struct{}

// NewOnes creates a new ones initializer
func NewOnes() *Ones {
	return &Ones{}
}

// Init returns a one-filled buffer for the shape
func (o *Ones) Init(shape variable.Shape, dtype variable.DType) []float64 {
	out := make([]float64, shape.NumElements())
	for i := range out {
		out[i] = 1
	}
	return out
}

// Constant fills every element with a fixed value
type Constant struct {
	Value float64
}

// NewConstant creates a constant initializer with the given fill value
func NewConstant(value float64) *Constant {
	return &Constant{Value: value}
}

// Init returns a buffer filled with the constant value
func (c *Constant) Init(shape variable.Shape, dtype variable.DType) []float64 {
	out := make([]float64, shape.NumElements())
	for i := range out {
		out[i] = c.Value
	}
	return out
}

// Type represents the type of initializer
type Type string

const (
	// TypeZeros fills state with zeros
	TypeZeros Type = "zeros"
	// TypeOnes fills state with ones
	TypeOnes Type = "ones"
	// TypeConstant fills state with a fixed value (zero unless constructed directly)
	TypeConstant Type = "constant"
)

// New creates a new initializer by type
func New(initType Type) (variable.Initializer, error) {
	switch initType {
	case TypeZeros:
		return NewZeros(), nil
	case TypeOnes:
		return NewOnes(), nil
	case TypeConstant:
		return NewConstant(0), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownInitializer, initType)
	}
}

// Get resolves an initializer specification. It accepts a concrete
// variable.Initializer, a Type, or a plain string name; nil resolves to
// zeros, which is the default for metric state.
func Get(spec any) (variable.Initializer, error) {
	switch s := spec.(type) {
	case nil:
		return NewZeros(), nil
	case variable.Initializer:
		return s, nil
	case Type:
		return New(s)
	case string:
		return New(Type(s))
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidInitializer, spec)
	}
}
