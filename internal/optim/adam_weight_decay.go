package optim

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/adamw/internal/nn"
	"github.com/born-ml/adamw/internal/parallel"
	"github.com/born-ml/adamw/internal/tensor"
)

// Slot names.
const (
	SlotM = "m" // First moment: running average of the gradient.
	SlotV = "v" // Second moment: running average of the squared gradient.
)

// AdamWeightDecay is Adam with decoupled weight decay.
//
// It owns the moment accumulators of every registered parameter. Updates of
// distinct parameters are independent and may run concurrently; each parameter
// has its own lock so that its value and accumulators change together.
type AdamWeightDecay struct {
	cfg   Config
	decay *decayPolicy

	mu    sync.RWMutex // Guards slots (registration only, not updates).
	slots map[*nn.Parameter]*slotEntry
}

// slotEntry is the optimizer state of one parameter.
type slotEntry struct {
	mu       sync.Mutex // Held for a whole update and for consistent reads.
	param    *nn.Parameter
	m, v     *tensor.Tensor
	decay    bool
	scratch  *scratch // Allocated on first Apply.
	released bool
}

// New creates an AdamWeightDecay optimizer.
//
// Every hyperparameter is validated here; an invalid one is reported as a
// ConfigError instead of surfacing on the first step.
func New(cfg Config) (*AdamWeightDecay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	cfg.ExcludeFromWeightDecay = slices.Clone(cfg.ExcludeFromWeightDecay)

	decay, err := newDecayPolicy(cfg.WeightDecayRate, cfg.ExcludeFromWeightDecay)
	if err != nil {
		return nil, err
	}

	klog.V(1).Infof("%s: weight_decay_rate=%g beta_1=%g beta_2=%g epsilon=%g exclude=%q",
		cfg.Name, cfg.WeightDecayRate, cfg.Beta1, cfg.Beta2, cfg.Epsilon, cfg.ExcludeFromWeightDecay)

	return &AdamWeightDecay{
		cfg:   cfg,
		decay: decay,
		slots: make(map[*nn.Parameter]*slotEntry),
	}, nil
}

// Config returns a copy of the optimizer's configuration.
func (o *AdamWeightDecay) Config() Config {
	c := o.cfg
	c.ExcludeFromWeightDecay = slices.Clone(c.ExcludeFromWeightDecay)
	return c
}

// UsesWeightDecay reports whether the parameter called name is decayed.
//
// It is false whenever the weight decay rate is 0. Otherwise it is false if any
// exclusion pattern matches somewhere in the name (a search, not a full match:
// "bias" excludes "layer1/bias" but "^bias$" does not). A trailing ":<n>"
// output index is ignored.
func (o *AdamWeightDecay) UsesWeightDecay(name string) bool {
	use, err := o.decay.uses(name)
	if err != nil {
		klog.Warningf("%s: %v; applying weight decay", o.cfg.Name, err)
		return true
	}
	return use
}

// CreateSlots allocates zero-valued m and v accumulators, matching each
// parameter's shape and dtype.
//
// Parameters that already have accumulators are left untouched, so calling it
// again is a no-op for them. The call is all-or-nothing: if any parameter is
// invalid no accumulators are created.
func (o *AdamWeightDecay) CreateSlots(params ...*nn.Parameter) error {
	const op = "create_slots"

	decays := make([]bool, len(params))
	for i, p := range params {
		if p == nil {
			return usageErrorf(op, "", "parameter #%d is nil", i)
		}
		if p.Value() == nil {
			return usageErrorf(op, p.Name(), "parameter has no value")
		}
		if !p.Value().DType().IsFloat() {
			return usageErrorf(op, p.Name(), "unsupported dtype %s", p.Value().DType())
		}
		use, err := o.decay.uses(p.Name())
		if err != nil {
			return err
		}
		decays[i] = use
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for i, p := range params {
		if _, found := o.slots[p]; found {
			klog.V(2).Infof("%s: slots for %q already exist", o.cfg.Name, p.Name())
			continue
		}
		o.slots[p] = &slotEntry{
			param: p,
			m:     tensor.ZerosLike(p.Value()),
			v:     tensor.ZerosLike(p.Value()),
			decay: decays[i],
		}
		klog.V(1).Infof("%s: created slots for %s (weight decay: %v)", o.cfg.Name, p, decays[i])
	}
	return nil
}

// ReleaseSlots drops the accumulators of parameters the host has discarded.
// Unregistered parameters are ignored.
func (o *AdamWeightDecay) ReleaseSlots(params ...*nn.Parameter) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range params {
		entry, found := o.slots[p]
		if !found {
			continue
		}
		delete(o.slots, p)

		entry.mu.Lock()
		entry.released = true
		entry.m, entry.v, entry.scratch = nil, nil, nil
		entry.mu.Unlock()
		klog.V(1).Infof("%s: released slots for %q", o.cfg.Name, p.Name())
	}
}

// Apply performs one update of param with the given gradient.
//
// The new parameter value and accumulators are computed aside, checked, and
// then written in place together while holding the parameter's lock. On error
// nothing is written.
//
// Errors:
//   - UsageError: param was never passed to CreateSlots, or grad (or the
//     parameter itself) no longer matches the accumulators in shape or dtype.
//   - NumericError: the gradient, the learning rate or a result is NaN/Inf.
func (o *AdamWeightDecay) Apply(param *nn.Parameter, grad *tensor.Tensor) error {
	const op = "apply"

	if param == nil {
		return usageErrorf(op, "", "parameter is nil")
	}
	if grad == nil {
		return usageErrorf(op, param.Name(), "gradient is nil")
	}

	entry := o.lookup(param)
	if entry == nil {
		return usageErrorf(op, param.Name(), "accumulators were never created, call CreateSlots first")
	}

	lr := o.cfg.LearningRate.Rate()
	if !isFinite(lr) {
		return numericErrorf(op, param.Name(), -1, "learning rate is %g", lr)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.released {
		return usageErrorf(op, param.Name(), "accumulators were released")
	}

	value := param.Value()
	if value.DType() != entry.m.DType() || !value.Shape().Equal(entry.m.Shape()) {
		return usageErrorf(op, param.Name(), "parameter is %s but its accumulators are %s", value, entry.m)
	}
	if grad.DType() != value.DType() || !grad.Shape().Equal(value.Shape()) {
		return usageErrorf(op, param.Name(), "gradient is %s, parameter is %s", grad, value)
	}
	if i := grad.FirstNonFinite(); i >= 0 {
		return numericErrorf(op, param.Name(), i, "gradient is %g", grad.At(i))
	}

	if entry.scratch == nil {
		entry.scratch = newScratch(value)
	}
	next := entry.scratch
	stepTensors(&o.cfg, lr, entry.decay, value, entry.m, entry.v, grad, next)

	for _, out := range []struct {
		name string
		t    *tensor.Tensor
	}{{"parameter", next.value}, {SlotM, next.m}, {SlotV, next.v}} {
		if i := out.t.FirstNonFinite(); i >= 0 {
			return numericErrorf(op, param.Name(), i, "update produced %g in %s", out.t.At(i), out.name)
		}
	}

	// Shapes and dtypes were checked above, CopyFrom cannot fail.
	_ = value.CopyFrom(next.value)
	_ = entry.m.CopyFrom(next.m)
	_ = entry.v.CopyFrom(next.v)

	klog.V(2).Infof("%s: applied update to %q (lr=%g, weight decay: %v)", o.cfg.Name, param.Name(), lr, entry.decay)
	return nil
}

// ApplyGradients applies every gradient in grads.
//
// Distinct parameters are updated concurrently according to Config.Parallel.
// A parameter listed twice is a UsageError and nothing is applied. Otherwise
// every pair is attempted; parameters that succeeded stay updated and the
// failures are returned joined.
func (o *AdamWeightDecay) ApplyGradients(grads []GradPair) error {
	const op = "apply_gradients"

	seen := make(map[*nn.Parameter]struct{}, len(grads))
	for i, g := range grads {
		if g.Param == nil {
			return usageErrorf(op, "", "gradient #%d has no parameter", i)
		}
		if _, dup := seen[g.Param]; dup {
			return usageErrorf(op, g.Param.Name(), "parameter appears more than once")
		}
		seen[g.Param] = struct{}{}
	}

	err := parallel.ForEach(len(grads), func(i int) error {
		return o.Apply(grads[i].Param, grads[i].Grad)
	}, o.cfg.Parallel)
	if err != nil {
		klog.Warningf("%s: %d gradients, some updates failed: %v", o.cfg.Name, len(grads), err)
		return errors.WithMessagef(err, "%s: %s", o.cfg.Name, op)
	}
	return nil
}

// SlotNames returns the names of the per-parameter accumulators.
func (o *AdamWeightDecay) SlotNames() []string {
	return []string{SlotM, SlotV}
}

// SlotFullName returns the qualified accumulator name, "<param>/<optimizer>/<slot>".
func (o *AdamWeightDecay) SlotFullName(param *nn.Parameter, slot string) string {
	return variableName(param.Name()) + "/" + o.cfg.Name + "/" + slot
}

// Slot returns a copy of accumulator slot ("m" or "v") of param.
func (o *AdamWeightDecay) Slot(param *nn.Parameter, slot string) (*tensor.Tensor, error) {
	const op = "slot"

	if slot != SlotM && slot != SlotV {
		return nil, usageErrorf(op, "", "unknown slot %q", slot)
	}
	_, m, v, err := o.Snapshot(param)
	if err != nil {
		return nil, err
	}
	if slot == SlotM {
		return m, nil
	}
	return v, nil
}

// Snapshot returns copies of param's value and accumulators taken under the
// parameter's lock, so the three always come from the same step.
func (o *AdamWeightDecay) Snapshot(param *nn.Parameter) (value, m, v *tensor.Tensor, err error) {
	const op = "snapshot"

	if param == nil {
		return nil, nil, nil, usageErrorf(op, "", "parameter is nil")
	}
	entry := o.lookup(param)
	if entry == nil {
		return nil, nil, nil, usageErrorf(op, param.Name(), "parameter is not registered")
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.released {
		return nil, nil, nil, usageErrorf(op, param.Name(), "accumulators were released")
	}
	return param.Value().Clone(), entry.m.Clone(), entry.v.Clone(), nil
}

// Registered reports whether param has accumulators.
func (o *AdamWeightDecay) Registered(param *nn.Parameter) bool {
	return o.lookup(param) != nil
}

// NumParameters returns the number of registered parameters.
func (o *AdamWeightDecay) NumParameters() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.slots)
}

// SlotBytes returns the memory held by all accumulators, in bytes.
func (o *AdamWeightDecay) SlotBytes() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var total int64
	for _, entry := range o.slots {
		total += int64(entry.m.ByteSize() + entry.v.ByteSize())
	}
	return total
}

func (o *AdamWeightDecay) lookup(param *nn.Parameter) *slotEntry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.slots[param]
}
