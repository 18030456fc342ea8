package tensor

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Tensor is a dense, row-major tensor living in host memory.
//
// The storage is a typed flat slice whose element type is fixed by DType:
// []float16.Float16, []float32 or []float64. Tensors are mutable; methods that
// write (CopyFrom, Zero) keep the underlying storage so that callers holding a
// slice from Float32s and friends observe the new values.
type Tensor struct {
	shape Shape
	dtype DataType
	data  any
}

// Zeros creates a zero-filled tensor with the given shape and type.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	n := shape.NumElements()
	var data any
	switch dtype {
	case Float16:
		data = make([]float16.Float16, n)
	case Float32:
		data = make([]float32, n)
	case Float64:
		data = make([]float64, n)
	default:
		return nil, fmt.Errorf("unsupported data type %s", dtype)
	}
	return &Tensor{shape: shape.Clone(), dtype: dtype, data: data}, nil
}

// ZerosLike creates a zero-filled tensor with the shape and type of t.
func ZerosLike(t *Tensor) *Tensor {
	z, err := Zeros(t.shape, t.dtype)
	if err != nil {
		// t was validated when it was created.
		panic(err)
	}
	return z
}

// FromFloat32 creates a float32 tensor holding a copy of data.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	t, err := fromSliceCheck(len(data), shape, Float32)
	if err != nil {
		return nil, err
	}
	copy(t.Float32s(), data)
	return t, nil
}

// FromFloat64 creates a float64 tensor holding a copy of data.
func FromFloat64(data []float64, shape Shape) (*Tensor, error) {
	t, err := fromSliceCheck(len(data), shape, Float64)
	if err != nil {
		return nil, err
	}
	copy(t.Float64s(), data)
	return t, nil
}

// FromFloat16 creates a half precision tensor, rounding each value of data to
// the nearest representable float16.
func FromFloat16(data []float32, shape Shape) (*Tensor, error) {
	t, err := fromSliceCheck(len(data), shape, Float16)
	if err != nil {
		return nil, err
	}
	dst := t.Float16s()
	for i, x := range data {
		dst[i] = float16.Fromfloat32(x)
	}
	return t, nil
}

func fromSliceCheck(n int, shape Shape, dtype DataType) (*Tensor, error) {
	t, err := Zeros(shape, dtype)
	if err != nil {
		return nil, err
	}
	if want := shape.NumElements(); n != want {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", n, shape, want)
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// Float16s returns the underlying storage of a Float16 tensor.
// Panics if the tensor holds another type.
func (t *Tensor) Float16s() []float16.Float16 {
	if t.dtype != Float16 {
		panic(fmt.Sprintf("tensor: Float16s called on %s tensor", t.dtype))
	}
	return t.data.([]float16.Float16)
}

// Float32s returns the underlying storage of a Float32 tensor.
// Panics if the tensor holds another type.
func (t *Tensor) Float32s() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor: Float32s called on %s tensor", t.dtype))
	}
	return t.data.([]float32)
}

// Float64s returns the underlying storage of a Float64 tensor.
// Panics if the tensor holds another type.
func (t *Tensor) Float64s() []float64 {
	if t.dtype != Float64 {
		panic(fmt.Sprintf("tensor: Float64s called on %s tensor", t.dtype))
	}
	return t.data.([]float64)
}

// At returns the i-th element in row-major order, widened to float64.
func (t *Tensor) At(i int) float64 {
	switch d := t.data.(type) {
	case []float16.Float16:
		return float64(d[i].Float32())
	case []float32:
		return float64(d[i])
	case []float64:
		return d[i]
	}
	panic("unreachable")
}

// Values returns a float64 copy of all elements.
func (t *Tensor) Values() []float64 {
	out := make([]float64, t.NumElements())
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := ZerosLike(t)
	_ = c.CopyFrom(t)
	return c
}

// CopyFrom overwrites t's elements with src's, in place.
// Shapes and types must match.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if t.dtype != src.dtype {
		return fmt.Errorf("dtype mismatch: %s vs %s", t.dtype, src.dtype)
	}
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("shape mismatch: %v vs %v", t.shape, src.shape)
	}
	switch d := t.data.(type) {
	case []float16.Float16:
		copy(d, src.data.([]float16.Float16))
	case []float32:
		copy(d, src.data.([]float32))
	case []float64:
		copy(d, src.data.([]float64))
	}
	return nil
}

// Zero sets every element to 0, in place.
func (t *Tensor) Zero() {
	switch d := t.data.(type) {
	case []float16.Float16:
		clear(d)
	case []float32:
		clear(d)
	case []float64:
		clear(d)
	}
}

// AllFinite reports whether no element is NaN or ±Inf.
func (t *Tensor) AllFinite() bool {
	return t.FirstNonFinite() < 0
}

// FirstNonFinite returns the index of the first NaN or ±Inf element, or -1.
func (t *Tensor) FirstNonFinite() int {
	switch d := t.data.(type) {
	case []float16.Float16:
		for i, x := range d {
			if !x.IsFinite() {
				return i
			}
		}
	case []float32:
		for i, x := range d {
			if !isFinite(float64(x)) {
				return i
			}
		}
	case []float64:
		for i, x := range d {
			if !isFinite(x) {
				return i
			}
		}
	}
	return -1
}

// String returns a short description, e.g. "float32(2, 3)".
func (t *Tensor) String() string {
	return t.dtype.String() + t.shape.String()
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
