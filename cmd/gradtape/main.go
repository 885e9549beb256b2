// Package main provides the GradTape command-line demo.
//
// Subcommands:
//
//	demo     walk through gradient tape recording and queries
//	train    fit a linear model with SGD and a progress bar
//	version  print the version
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/gradtape/gradtape/autodiff"
	"github.com/gradtape/gradtape/backend/cpu"
	"github.com/gradtape/gradtape/nn"
	"github.com/gradtape/gradtape/optim"
	"github.com/gradtape/gradtape/tensor"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	switch flag.Arg(0) {
	case "demo", "":
		runDemo()
	case "train":
		runTrain()
	case "version":
		fmt.Printf("GradTape %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  demo     walk through gradient tape recording and queries")
		fmt.Fprintln(os.Stderr, "  train    fit a linear model with SGD")
		fmt.Fprintln(os.Stderr, "  version  print the version")
		os.Exit(2)
	}
}

// runDemo walks through the tape API: explicit watching, the nil
// gradient for unwatched values, persistent tapes, and nested tapes.
func runDemo() {
	backend := autodiff.New(cpu.New())

	fmt.Println("== Gradient of x² at x = 3 ==")
	x := mustScalar(3, backend)

	tape := backend.NewTape()
	tape.Watch(x.Raw())
	y := x.Mul(x)
	grads, err := tape.Gradient(y.Raw(), x.Raw())
	if err != nil {
		klog.Fatalf("gradient: %v", err)
	}
	tape.Close()
	fmt.Printf("dy/dx = %v (expected 6)\n\n", grads[0].AsFloat32()[0])

	fmt.Println("== Unwatched values get nil gradients ==")
	c := mustScalar(5, backend)
	tape = backend.NewTape()
	y = c.Mul(c) // c is never watched
	grads, err = tape.Gradient(y.Raw(), c.Raw())
	if err != nil {
		klog.Fatalf("gradient: %v", err)
	}
	tape.Close()
	fmt.Printf("dy/dc = %v (nil means: not watched)\n\n", grads[0])

	fmt.Println("== Persistent tape, two queries ==")
	x = mustScalar(3, backend)
	tape = backend.NewTape(autodiff.Persistent())
	tape.Watch(x.Raw())
	y = x.Mul(x)      // x²
	z := y.Mul(x)     // x³
	gy, _ := tape.Gradient(y.Raw(), x.Raw())
	gz, _ := tape.Gradient(z.Raw(), x.Raw())
	tape.Close()
	fmt.Printf("d(x²)/dx = %v, d(x³)/dx = %v (expected 6 and 27)\n\n",
		gy[0].AsFloat32()[0], gz[0].AsFloat32()[0])

	fmt.Println("== Nested tapes: second derivative ==")
	x = mustScalar(3, backend)
	outer := backend.NewTape()
	outer.Watch(x.Raw())
	inner := backend.NewTape()
	inner.Watch(x.Raw())
	y = x.Mul(x).Mul(x) // x³
	first, _ := inner.Gradient(y.Raw(), x.Raw())
	inner.Close()
	second, err := outer.Gradient(first[0], x.Raw())
	if err != nil {
		klog.Fatalf("second derivative: %v", err)
	}
	outer.Close()
	fmt.Printf("d²(x³)/dx² = %v (expected 18 = 6x)\n",
		second[0].AsFloat32()[0])
}

// runTrain fits y = 2x - 1 with a single Linear layer and SGD.
func runTrain() {
	const epochs = 300

	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	xs := []float32{-2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2}
	ys := make([]float32, len(xs))
	for i, x := range xs {
		ys[i] = 2*x - 1
	}

	input, err := tensor.FromSlice(xs, tensor.Shape{len(xs), 1}, b)
	if err != nil {
		klog.Fatalf("input: %v", err)
	}
	target, err := tensor.FromSlice(ys, tensor.Shape{len(ys), 1}, b)
	if err != nil {
		klog.Fatalf("target: %v", err)
	}

	model := nn.NewLinear[tensor.Backend](1, 1, b)
	lossFn := nn.NewMSELoss[tensor.Backend]()
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	bar := progressbar.NewOptions(epochs,
		progressbar.OptionSetDescription("training"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
	)

	var lastLoss float32
	for epoch := 0; epoch < epochs; epoch++ {
		tape := backend.NewTape()

		pred := model.Forward(input)
		loss := lossFn.Forward(pred, target)
		lastLoss = loss.Item()

		grads, err := tape.Gradient(loss.Raw(),
			model.Weight().Raw(), model.Bias().Raw())
		tape.Close()
		if err != nil {
			klog.Fatalf("epoch %d: %v", epoch, err)
		}

		sgd.Step(map[*tensor.RawTensor]*tensor.RawTensor{
			model.Weight().Raw(): grads[0],
			model.Bias().Raw():   grads[1],
		})

		if err := bar.Add(1); err != nil {
			klog.V(1).Infof("progress bar: %v", err)
		}
	}
	fmt.Println()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Printf("final loss: %.6f\n", lastLoss)
	fmt.Printf("learned: y = %.3fx + %.3f (target: y = 2x - 1)\n",
		model.Weight().Raw().AsFloat32()[0],
		model.Bias().Raw().AsFloat32()[0])
	fmt.Printf("heap in use: %s\n", humanize.Bytes(mem.HeapInuse))
}

func mustScalar(v float32, b tensor.Backend) *tensor.Tensor[float32, tensor.Backend] {
	t, err := tensor.FromSlice([]float32{v}, tensor.Shape{}, b)
	if err != nil {
		klog.Fatalf("scalar: %v", err)
	}
	return t
}
