// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/adamw/internal/optim"
)

// Updater is the two-method interface the host training loop drives.
type Updater = optim.Updater

// GradPair is a gradient for one parameter.
type GradPair = optim.GradPair

// Config holds the hyperparameters of AdamWeightDecay.
type Config = optim.Config

// LearningRate supplies the learning rate used by a step.
type LearningRate = optim.LearningRate

// ConstantRate is a fixed learning rate.
type ConstantRate = optim.ConstantRate

// RateFunc adapts a host schedule to LearningRate.
type RateFunc = optim.RateFunc

// AdamWeightDecay is Adam with decoupled weight decay.
type AdamWeightDecay = optim.AdamWeightDecay

// Error types.
type (
	ConfigError  = optim.ConfigError
	UsageError   = optim.UsageError
	NumericError = optim.NumericError
)

// Error classes, for use with errors.Is.
var (
	ErrConfig  = optim.ErrConfig
	ErrUsage   = optim.ErrUsage
	ErrNumeric = optim.ErrNumeric
)

// Slot names.
const (
	SlotM = optim.SlotM
	SlotV = optim.SlotV
)

// DefaultConfig returns the default hyperparameters (beta_1 0.9, beta_2 0.999,
// epsilon 1e-6, no weight decay) with a constant learning rate.
func DefaultConfig(lr float64) Config {
	return optim.DefaultConfig(lr)
}

// New creates an AdamWeightDecay optimizer, validating every hyperparameter.
//
// Example:
//
//	cfg := optim.DefaultConfig(1e-4)
//	cfg.WeightDecayRate = 0.01
//	cfg.ExcludeFromWeightDecay = []string{"LayerNorm", "layer_norm", "bias"}
//	opt, err := optim.New(cfg)
func New(cfg Config) (*AdamWeightDecay, error) {
	return optim.New(cfg)
}
