// Package nn holds the host-side view of trainable parameters.
package nn

import (
	"github.com/born-ml/adamw/internal/tensor"
)

// Parameter represents a trainable parameter owned by the host training system.
//
// The optimizer reads and overwrites the parameter value in place but never
// reallocates it, so any slice obtained from Value() stays valid across steps.
//
// Example:
//
//	w, _ := tensor.FromFloat32([]float32{0.1, -0.2}, tensor.Shape{2})
//	weight := nn.NewParameter("dense/kernel", w)
type Parameter struct {
	name  string         // Parameter name (e.g., "layer1/kernel", "layer1/bias")
	value *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new trainable parameter.
//
// Parameters:
//   - name: Descriptive name, matched against weight decay exclusion patterns
//   - value: The initialized parameter tensor
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// String returns the name and tensor description.
func (p *Parameter) String() string {
	return p.name + ":" + p.value.String()
}
