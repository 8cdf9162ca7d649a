// Package variable provides dtype definitions for metric state
package variable

// DType represents the numeric element type of a variable
type DType string

const (
	// DTypeFloat32 represents 32-bit floating point values
	DTypeFloat32 DType = "float32"
	// DTypeFloat64 represents 64-bit floating point values
	DTypeFloat64 DType = "float64"
	// DTypeInt32 represents 32-bit integer values
	DTypeInt32 DType = "int32"
	// DTypeInt64 represents 64-bit integer values
	DTypeInt64 DType = "int64"
)

// DefaultDType is used when no dtype is specified
const DefaultDType = DTypeFloat64

// Validate ensures the dtype is one of the supported element types
func (d DType) Validate() error {
	switch d {
	case DTypeFloat32, DTypeFloat64, DTypeInt32, DTypeInt64:
		return nil
	default:
		return ErrInvalidDType
	}
}

// OrDefault returns the dtype itself, or DefaultDType when unset
func (d DType) OrDefault() DType {
	if d == "" {
		return DefaultDType
	}
	return d
}

// IsInteger reports whether the dtype holds integer values
func (d DType) IsInteger() bool {
	return d == DTypeInt32 || d == DTypeInt64
}
