// Package tensor provides the dense host tensors that hold parameters, gradients
// and optimizer accumulators.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// IsFloat reports whether dt is one of the supported floating point types.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// ParseDataType maps a name as returned by String back to its DataType.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "float16", "half":
		return Float16, true
	case "float32", "float":
		return Float32, true
	case "float64", "double":
		return Float64, true
	default:
		return 0, false
	}
}
