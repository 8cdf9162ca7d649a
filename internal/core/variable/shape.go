// Package variable provides shape definitions for metric state
package variable

// Shape describes the dimensions of a variable. An empty or nil shape
// denotes a scalar.
type Shape []int

// Scalar is the shape of a single-element variable
var Scalar = Shape{}

// NumElements returns the total element count for the shape
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// IsScalar reports whether the shape denotes a single element
func (s Shape) IsScalar() bool {
	return len(s) == 0
}

// Validate ensures every dimension is positive
func (s Shape) Validate() error {
	for _, dim := range s {
		if dim <= 0 {
			return ErrInvalidShape
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}
