// Package parallel fans independent per-parameter work out to worker goroutines.
package parallel

import (
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Maximum number of concurrent workers; <= 0 means runtime.NumCPU().
	MinItems   int  // Below this many items work runs sequentially.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinItems:   2,
	}
}

// ForEach executes f(i) for i in [0, n) with optional parallelism.
//
// Every item runs even if some fail; the returned error joins all failures in
// index order, or is nil. Falls back to sequential execution if parallelism is
// disabled or n is too small.
func ForEach(n int, f func(i int) error, cfg Config) error {
	errs := make([]error, n)

	if !cfg.Enabled || n < max(cfg.MinItems, 2) {
		for i := 0; i < n; i++ {
			errs[i] = f(i)
		}
		return errors.Join(errs...)
	}

	workers := cfg.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			// Each goroutine owns errs[i]; failures are reported through the slice
			// so that one failure does not hide the others.
			errs[i] = f(i)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
