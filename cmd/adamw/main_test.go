package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adamw/internal/nn"
	"github.com/born-ml/adamw/internal/optim"
	"github.com/born-ml/adamw/internal/tensor"
)

func TestSyntheticData(t *testing.T) {
	xs, ys := syntheticData(3, 2, 1)
	assert.Equal(t, []float64{-1, 0, 1}, xs)
	assert.Equal(t, []float64{-1, 1, 3}, ys)
}

func TestLossAndGradients(t *testing.T) {
	xs, ys := syntheticData(5, 3, -2)

	loss, dw, db := lossAndGradients(3, -2, xs, ys)
	assert.InDelta(t, 0, loss, 1e-12)
	assert.InDelta(t, 0, dw, 1e-12)
	assert.InDelta(t, 0, db, 1e-12)

	// Off by +1 in the bias: residual is 1 everywhere.
	loss, dw, db = lossAndGradients(3, -1, xs, ys)
	assert.InDelta(t, 1, loss, 1e-12)
	assert.InDelta(t, 0, dw, 1e-12)
	assert.InDelta(t, 2, db, 1e-12)
}

func TestTrainingConverges(t *testing.T) {
	for _, dtype := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		t.Run(dtype.String(), func(t *testing.T) {
			opt, err := optim.New(optim.DefaultConfig(0.01))
			require.NoError(t, err)

			w, err := tensor.Zeros(tensor.Shape{1}, dtype)
			require.NoError(t, err)
			b, err := tensor.Zeros(tensor.Shape{1}, dtype)
			require.NoError(t, err)
			kernel := nn.NewParameter("linear/kernel", w)
			bias := nn.NewParameter("linear/bias", b)
			require.NoError(t, opt.CreateSlots(kernel, bias))

			xs, ys := syntheticData(64, 3, -2)
			for range 3000 {
				_, dw, db := lossAndGradients(kernel.Value().At(0), bias.Value().At(0), xs, ys)
				gw, err := scalar(dw, dtype)
				require.NoError(t, err)
				gb, err := scalar(db, dtype)
				require.NoError(t, err)
				require.NoError(t, opt.ApplyGradients([]optim.GradPair{{Param: kernel, Grad: gw}, {Param: bias, Grad: gb}}))
			}

			assert.InDelta(t, 3, kernel.Value().At(0), 0.05)
			assert.InDelta(t, -2, bias.Value().At(0), 0.05)
		})
	}
}
