package optim

import (
	"math"

	"github.com/x448/float16"
	"golang.org/x/exp/constraints"

	"github.com/born-ml/adamw/internal/tensor"
)

// hyper holds the step hyperparameters cast to the parameter's precision.
type hyper[T constraints.Float] struct {
	lr, weightDecay      T
	beta1, oneMinusBeta1 T
	beta2, oneMinusBeta2 T
	eps                  T
}

func castHyper[T constraints.Float](c *Config, lr float64) hyper[T] {
	b1, b2 := T(c.Beta1), T(c.Beta2)
	return hyper[T]{
		lr:            T(lr),
		weightDecay:   T(c.WeightDecayRate),
		beta1:         b1,
		oneMinusBeta1: 1 - b1,
		beta2:         b2,
		oneMinusBeta2: 1 - b2,
		eps:           T(c.Epsilon),
	}
}

// castHalfHyper rounds each hyperparameter to float16 precision. Arithmetic
// itself runs in float32.
func castHalfHyper(c *Config, lr float64) hyper[float32] {
	b1, b2 := toHalf(c.Beta1), toHalf(c.Beta2)
	return hyper[float32]{
		lr:            toHalf(lr),
		weightDecay:   toHalf(c.WeightDecayRate),
		beta1:         b1,
		oneMinusBeta1: toHalf(float64(1 - b1)),
		beta2:         b2,
		oneMinusBeta2: toHalf(float64(1 - b2)),
		eps:           toHalf(c.Epsilon),
	}
}

func toHalf(x float64) float32 {
	return float16.Fromfloat32(float32(x)).Float32()
}

// adamStep computes one update for every element:
//
//	next_m   = beta1*m + (1-beta1)*g
//	next_v   = beta2*v + (1-beta2)*g²
//	update   = next_m / (sqrt(next_v) + eps)   [+ weight_decay*var]
//	next_var = var - lr*update
//
// There is no bias correction of the moments.
func adamStep[T constraints.Float](h hyper[T], decay bool, value, m, v, grad, nextValue, nextM, nextV []T) {
	for i := range value {
		g := grad[i]
		mi := h.beta1*m[i] + h.oneMinusBeta1*g
		vi := h.beta2*v[i] + h.oneMinusBeta2*g*g

		update := mi / (T(math.Sqrt(float64(vi))) + h.eps)
		if decay {
			update += h.weightDecay * value[i]
		}

		nextValue[i] = value[i] - h.lr*update
		nextM[i] = mi
		nextV[i] = vi
	}
}

// stepTensors runs adamStep on the storage of the given tensors, writing the
// results into out. All tensors share the parameter's shape and dtype.
func stepTensors(c *Config, lr float64, decay bool, value, m, v, grad *tensor.Tensor, out *scratch) {
	switch value.DType() {
	case tensor.Float32:
		adamStep(castHyper[float32](c, lr), decay,
			value.Float32s(), m.Float32s(), v.Float32s(), grad.Float32s(),
			out.value.Float32s(), out.m.Float32s(), out.v.Float32s())

	case tensor.Float64:
		adamStep(castHyper[float64](c, lr), decay,
			value.Float64s(), m.Float64s(), v.Float64s(), grad.Float64s(),
			out.value.Float64s(), out.m.Float64s(), out.v.Float64s())

	case tensor.Float16:
		w := out.widen(value, m, v, grad)
		adamStep(castHalfHyper(c, lr), decay,
			w.value, w.m, w.v, w.grad,
			w.nextValue, w.nextM, w.nextV)
		narrow(out.value.Float16s(), w.nextValue)
		narrow(out.m.Float16s(), w.nextM)
		narrow(out.v.Float16s(), w.nextV)

	default:
		panic("optim: unsupported dtype " + value.DType().String())
	}
}

// scratch holds the next values of one parameter until they are committed.
// It is reused across steps and guarded by the owning slot's lock.
type scratch struct {
	value, m, v *tensor.Tensor
	half        *halfBuffers // Only for Float16 parameters.
}

func newScratch(like *tensor.Tensor) *scratch {
	s := &scratch{
		value: tensor.ZerosLike(like),
		m:     tensor.ZerosLike(like),
		v:     tensor.ZerosLike(like),
	}
	if like.DType() == tensor.Float16 {
		s.half = newHalfBuffers(like.NumElements())
	}
	return s
}

// halfBuffers are float32 working copies for half precision parameters.
type halfBuffers struct {
	value, m, v, grad       []float32
	nextValue, nextM, nextV []float32
}

func newHalfBuffers(n int) *halfBuffers {
	return &halfBuffers{
		value: make([]float32, n), m: make([]float32, n), v: make([]float32, n), grad: make([]float32, n),
		nextValue: make([]float32, n), nextM: make([]float32, n), nextV: make([]float32, n),
	}
}

func (s *scratch) widen(value, m, v, grad *tensor.Tensor) *halfBuffers {
	w := s.half
	widen(w.value, value.Float16s())
	widen(w.m, m.Float16s())
	widen(w.v, v.Float16s())
	widen(w.grad, grad.Float16s())
	return w
}

func widen(dst []float32, src []float16.Float16) {
	for i, x := range src {
		dst[i] = x.Float32()
	}
}

func narrow(dst []float16.Float16, src []float32) {
	for i, x := range src {
		dst[i] = float16.Fromfloat32(x)
	}
}
