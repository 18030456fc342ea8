// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense host tensors used for parameters,
// gradients and optimizer accumulators.
//
// Example:
//
//	w, err := tensor.FromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	h, err := tensor.FromFloat16([]float32{0.5, 0.25}, tensor.Shape{2})
package tensor

import (
	"github.com/born-ml/adamw/internal/tensor"
)

// Tensor is a dense, row-major tensor in host memory.
type Tensor = tensor.Tensor

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float16 DataType = tensor.Float16
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Zeros(shape, dtype)
}

// FromFloat16 creates a half precision tensor, rounding data to float16.
func FromFloat16(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromFloat16(data, shape)
}

// FromFloat32 creates a float32 tensor holding a copy of data.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromFloat64 creates a float64 tensor holding a copy of data.
func FromFloat64(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromFloat64(data, shape)
}
