// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides Adam with decoupled weight decay.
//
// # Overview
//
// AdamWeightDecay keeps two accumulators per parameter, m and v, and updates
// each parameter as
//
//	m = beta_1*m + (1-beta_1)*grad
//	v = beta_2*v + (1-beta_2)*grad²
//	update = m / (sqrt(v) + epsilon)
//	update += weight_decay_rate * param   // unless excluded by name
//	param -= learning_rate * update
//
// The decay term is added to the update instead of the gradient, so it does not
// pass through the moment estimates. The moments are not bias corrected.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/adamw/nn"
//	    "github.com/born-ml/adamw/optim"
//	    "github.com/born-ml/adamw/tensor"
//	)
//
//	func main() {
//	    w, _ := tensor.FromFloat32([]float32{0.5, -0.5}, tensor.Shape{2})
//	    kernel := nn.NewParameter("dense/kernel", w)
//
//	    cfg := optim.DefaultConfig(0.01)
//	    cfg.WeightDecayRate = 0.01
//	    cfg.ExcludeFromWeightDecay = []string{"bias"}
//	    opt, err := optim.New(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := opt.CreateSlots(kernel); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for step := range 100 {
//	        grad := computeGradient(kernel, step)
//	        if err := opt.Apply(kernel, grad); err != nil {
//	            log.Fatal(err)
//	        }
//	    }
//	}
//
// # Errors
//
// Invalid hyperparameters fail in New with a ConfigError. Applying to a
// parameter without accumulators, or a gradient of the wrong shape or dtype, is
// a UsageError. NaN or Inf in a gradient or in the result is a NumericError, and
// the parameter and its accumulators are left as they were.
//
// # Concurrency
//
// Distinct parameters may be updated from different goroutines; ApplyGradients
// does so with a bounded worker pool. The host must not apply two gradients to
// the same parameter at once.
package optim
