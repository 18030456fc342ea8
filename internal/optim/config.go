package optim

import (
	"math"

	"github.com/born-ml/adamw/internal/parallel"
)

// Default hyperparameters.
const (
	DefaultBeta1   = 0.9
	DefaultBeta2   = 0.999
	DefaultEpsilon = 1e-6
	DefaultName    = "AdamWeightDecay"
)

// LearningRate supplies the learning rate used by a step. It is read once per
// Apply call, so a host-driven schedule takes effect on the next update.
type LearningRate interface {
	Rate() float64
}

// ConstantRate is a fixed learning rate.
type ConstantRate float64

// Rate implements LearningRate.
func (r ConstantRate) Rate() float64 { return float64(r) }

// RateFunc adapts a function, typically a schedule closing over the host's
// global step, to LearningRate.
type RateFunc func() float64

// Rate implements LearningRate.
func (f RateFunc) Rate() float64 { return f() }

// Config holds the hyperparameters of AdamWeightDecay.
//
// Start from DefaultConfig: New validates every field as given and does not
// substitute defaults for zero values (a zero Beta1 is an error, not 0.9).
type Config struct {
	LearningRate    LearningRate // Required.
	WeightDecayRate float64      // Decoupled weight decay, >= 0 (default: 0)
	Beta1           float64      // First moment decay, in (0, 1) (default: 0.9)
	Beta2           float64      // Second moment decay, in (0, 1) (default: 0.999)
	Epsilon         float64      // Added to sqrt(v) for numerical stability, > 0 (default: 1e-6)

	// ExcludeFromWeightDecay lists regular expressions; a parameter whose name
	// contains a match for any of them is not decayed.
	ExcludeFromWeightDecay []string

	// Name prefixes accumulator names, see AdamWeightDecay.SlotFullName.
	Name string

	// Parallel controls how ApplyGradients spreads parameters over workers.
	Parallel parallel.Config
}

// DefaultConfig returns a Config with the default hyperparameters and the
// given constant learning rate.
func DefaultConfig(lr float64) Config {
	return Config{
		LearningRate: ConstantRate(lr),
		Beta1:        DefaultBeta1,
		Beta2:        DefaultBeta2,
		Epsilon:      DefaultEpsilon,
		Name:         DefaultName,
		Parallel:     parallel.DefaultConfig(),
	}
}

// Validate checks every hyperparameter and returns a ConfigError for the first
// invalid one.
func (c Config) Validate() error {
	if c.LearningRate == nil {
		return configErrorf("learning_rate", "is required")
	}
	if r, ok := c.LearningRate.(ConstantRate); ok {
		if !isFinite(float64(r)) || r < 0 {
			return configErrorf("learning_rate", "must be a finite value >= 0, got %g", float64(r))
		}
	}
	if !isFinite(c.WeightDecayRate) || c.WeightDecayRate < 0 {
		return configErrorf("weight_decay_rate", "must be a finite value >= 0, got %g", c.WeightDecayRate)
	}
	if !(c.Beta1 > 0 && c.Beta1 < 1) {
		return configErrorf("beta_1", "must be in (0, 1), got %g", c.Beta1)
	}
	if !(c.Beta2 > 0 && c.Beta2 < 1) {
		return configErrorf("beta_2", "must be in (0, 1), got %g", c.Beta2)
	}
	if !isFinite(c.Epsilon) || c.Epsilon <= 0 {
		return configErrorf("epsilon", "must be a finite value > 0, got %g", c.Epsilon)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
