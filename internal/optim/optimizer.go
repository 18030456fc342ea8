// Package optim implements Adam with decoupled weight decay.
//
// The update for a parameter w with gradient g and accumulators m, v is:
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g²
//	w = w - lr * (m/(sqrt(v)+eps) + weight_decay*w)
//
// The weight decay term is skipped for parameters whose name matches one of the
// configured exclusion patterns, and the moments are not bias corrected.
//
// Example usage:
//
//	cfg := optim.DefaultConfig(1e-4)
//	cfg.WeightDecayRate = 0.01
//	cfg.ExcludeFromWeightDecay = []string{"LayerNorm", "layer_norm", "bias"}
//
//	opt, err := optim.New(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := opt.CreateSlots(model.Parameters()...); err != nil {
//	    return err
//	}
//
//	// Training loop
//	for step := range steps {
//	    grads := computeGradients(model, batch)
//	    if err := opt.ApplyGradients(grads); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/born-ml/adamw/internal/nn"
	"github.com/born-ml/adamw/internal/tensor"
)

// Updater is the capability the host training loop drives.
//
// CreateSlots must be called for a parameter before the first Apply on it.
type Updater interface {
	// CreateSlots allocates optimizer state for the given parameters.
	// Already registered parameters keep their state.
	CreateSlots(params ...*nn.Parameter) error

	// Apply consumes one gradient for param and commits the new parameter
	// value together with the new optimizer state.
	Apply(param *nn.Parameter, grad *tensor.Tensor) error
}

// GradPair is a gradient for one parameter.
type GradPair struct {
	Param *nn.Parameter
	Grad  *tensor.Tensor
}

var _ Updater = (*AdamWeightDecay)(nil)
