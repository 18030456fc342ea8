// Package config reads optimizer hyperparameters from YAML files.
//
// Example file:
//
//	learning_rate: 1.0e-4
//	weight_decay_rate: 0.01
//	beta_1: 0.9
//	beta_2: 0.999
//	epsilon: 1.0e-6
//	exclude_from_weight_decay: ["LayerNorm", "layer_norm", "bias"]
//	workers: 8
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/adamw/internal/optim"
	"github.com/born-ml/adamw/internal/parallel"
)

// File is the YAML document. Absent keys keep the optimizer defaults.
type File struct {
	LearningRate           *float64 `yaml:"learning_rate"`
	WeightDecayRate        *float64 `yaml:"weight_decay_rate"`
	Beta1                  *float64 `yaml:"beta_1"`
	Beta2                  *float64 `yaml:"beta_2"`
	Epsilon                *float64 `yaml:"epsilon"`
	ExcludeFromWeightDecay []string `yaml:"exclude_from_weight_decay"`
	Name                   string   `yaml:"name"`

	// Workers caps concurrent parameter updates: 1 updates sequentially,
	// absent or 0 uses one worker per CPU.
	Workers *int `yaml:"workers"`
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read optimizer config %q", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "optimizer config %q", path)
	}
	return f, nil
}

// Parse decodes a YAML document. Unknown keys are an error, so that a typo
// does not silently fall back to a default.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil // Empty document.
		}
		return nil, errors.Wrap(err, "failed to parse optimizer config")
	}
	return f, nil
}

// OptimizerConfig converts the file into an optim.Config, starting from
// optim.DefaultConfig. The result is validated by optim.New, not here.
func (f *File) OptimizerConfig() (optim.Config, error) {
	if f.LearningRate == nil {
		return optim.Config{}, errors.Errorf("optimizer config: learning_rate is required")
	}
	cfg := optim.DefaultConfig(*f.LearningRate)

	if f.WeightDecayRate != nil {
		cfg.WeightDecayRate = *f.WeightDecayRate
	}
	if f.Beta1 != nil {
		cfg.Beta1 = *f.Beta1
	}
	if f.Beta2 != nil {
		cfg.Beta2 = *f.Beta2
	}
	if f.Epsilon != nil {
		cfg.Epsilon = *f.Epsilon
	}
	if len(f.ExcludeFromWeightDecay) > 0 {
		cfg.ExcludeFromWeightDecay = append([]string(nil), f.ExcludeFromWeightDecay...)
	}
	if f.Name != "" {
		cfg.Name = f.Name
	}

	if f.Workers != nil {
		switch n := *f.Workers; {
		case n < 0:
			return optim.Config{}, errors.Errorf("optimizer config: workers must be >= 0, got %d", n)
		case n == 1:
			cfg.Parallel = parallel.Config{Enabled: false}
		case n > 1:
			cfg.Parallel.Enabled = true
			cfg.Parallel.NumWorkers = n
		}
	}
	return cfg, nil
}
