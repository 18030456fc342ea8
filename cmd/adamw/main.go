// Package main provides a small host training loop driving the AdamWeightDecay
// optimizer: it fits y = a*x + b on synthetic data.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/born-ml/adamw/internal/config"
	"github.com/born-ml/adamw/internal/nn"
	"github.com/born-ml/adamw/internal/optim"
	"github.com/born-ml/adamw/internal/tensor"
)

const version = "v0.1.0"

var (
	flagConfig  = flag.String("config", "", "YAML file with optimizer hyperparameters; overrides -lr and -wd")
	flagSteps   = flag.Int("steps", 2000, "Number of training steps")
	flagLR      = flag.Float64("lr", 0.01, "Learning rate")
	flagWD      = flag.Float64("wd", 0.0, "Weight decay rate (the bias is always excluded)")
	flagDType   = flag.String("dtype", "float32", "Parameter dtype: float16, float32 or float64")
	flagSamples = flag.Int("samples", 256, "Number of synthetic samples")
	flagSlope   = flag.Float64("slope", 3, "Slope of the target line")
	flagOffset  = flag.Float64("offset", -2, "Offset of the target line")
	flagQuiet   = flag.Bool("quiet", false, "Disable the progress bar")
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("adamw %s\n", version)
		return
	}

	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if err := run(); err != nil {
		klog.Exitf("adamw: %+v", err)
	}
}

func run() error {
	dtype, ok := tensor.ParseDataType(*flagDType)
	if !ok {
		return fmt.Errorf("unknown -dtype %q", *flagDType)
	}
	if *flagSamples < 2 {
		return fmt.Errorf("-samples must be at least 2, got %d", *flagSamples)
	}

	cfg := optim.DefaultConfig(*flagLR)
	cfg.WeightDecayRate = *flagWD
	cfg.ExcludeFromWeightDecay = []string{"bias"}
	if *flagConfig != "" {
		file := must.M1(config.Load(*flagConfig))
		cfg = must.M1(file.OptimizerConfig())
	}

	opt, err := optim.New(cfg)
	if err != nil {
		return err
	}

	kernel := nn.NewParameter("linear/kernel", must.M1(tensor.Zeros(tensor.Shape{1}, dtype)))
	bias := nn.NewParameter("linear/bias", must.M1(tensor.Zeros(tensor.Shape{1}, dtype)))
	if err := opt.CreateSlots(kernel, bias); err != nil {
		return err
	}
	fmt.Printf("Optimizer state: %d parameters, %s of accumulators (%s)\n",
		opt.NumParameters(), humanize.Bytes(uint64(opt.SlotBytes())), dtype)
	for _, p := range []*nn.Parameter{kernel, bias} {
		fmt.Printf("  %-14s weight decay: %v\n", p.Name(), opt.UsesWeightDecay(p.Name()))
	}

	xs, ys := syntheticData(*flagSamples, *flagSlope, *flagOffset)

	var bar *progressbar.ProgressBar
	if !*flagQuiet {
		bar = progressbar.NewOptions(*flagSteps,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("training"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
		)
	}

	var loss float64
	for step := range *flagSteps {
		var dw, db float64
		loss, dw, db = lossAndGradients(kernel.Value().At(0), bias.Value().At(0), xs, ys)

		err := opt.ApplyGradients([]optim.GradPair{
			{Param: kernel, Grad: must.M1(scalar(dw, dtype))},
			{Param: bias, Grad: must.M1(scalar(db, dtype))},
		})
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}

		if bar != nil {
			bar.Describe(fmt.Sprintf("training (loss %.4g)", loss))
			_ = bar.Add(1)
		}
		klog.V(1).Infof("step %d: loss=%g kernel=%g bias=%g", step, loss, kernel.Value().At(0), bias.Value().At(0))
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("Fitted y = %.4f*x + %.4f (target %.4f*x + %.4f), loss %.3g\n",
		kernel.Value().At(0), bias.Value().At(0), *flagSlope, *flagOffset, loss)
	return nil
}

// syntheticData samples the target line at n evenly spaced points in [-1, 1].
func syntheticData(n int, slope, offset float64) (xs, ys []float64) {
	xs = make([]float64, n)
	floats.Span(xs, -1, 1)
	ys = make([]float64, n)
	floats.ScaleTo(ys, slope, xs)
	floats.AddConst(offset, ys)
	return xs, ys
}

// lossAndGradients returns the mean squared error of y = w*x + b and its
// partial derivatives with respect to w and b.
func lossAndGradients(w, b float64, xs, ys []float64) (loss, dw, db float64) {
	n := float64(len(xs))
	residual := make([]float64, len(xs))
	floats.ScaleTo(residual, w, xs)
	floats.AddConst(b, residual)
	floats.Sub(residual, ys)

	loss = floats.Dot(residual, residual) / n
	dw = 2 * floats.Dot(residual, xs) / n
	db = 2 * floats.Sum(residual) / n
	return loss, dw, db
}

func scalar(v float64, dtype tensor.DataType) (*tensor.Tensor, error) {
	switch dtype {
	case tensor.Float16:
		return tensor.FromFloat16([]float32{float32(v)}, tensor.Shape{1})
	case tensor.Float32:
		return tensor.FromFloat32([]float32{float32(v)}, tensor.Shape{1})
	default:
		return tensor.FromFloat64([]float64{v}, tensor.Shape{1})
	}
}
