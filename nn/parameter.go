// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the trainable parameter type updated by the optimizers.
package nn

import (
	"github.com/born-ml/adamw/internal/nn"
	"github.com/born-ml/adamw/tensor"
)

// Parameter is a named, mutable tensor owned by the host training system.
//
// Example:
//
//	w, _ := tensor.FromFloat32([]float32{0.1, -0.2}, tensor.Shape{2})
//	kernel := nn.NewParameter("layer1/kernel", w)
//
// Methods:
//
//	Name() string
//	    Returns the parameter name, matched against weight decay exclusions.
//
//	Value() *tensor.Tensor
//	    Returns the parameter tensor; optimizers overwrite it in place.
type Parameter = nn.Parameter

// NewParameter creates a new trainable parameter.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, value)
}
