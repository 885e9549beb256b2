// Package autodiff implements reverse-mode automatic differentiation
// with gradient tapes.
//
// Backend decorates any tensor.Backend: each differentiable operation runs
// its forward pass on the inner backend and is recorded onto every tape
// currently attached and recording. Tapes nest; an inner tape's backward
// pass is itself recorded by outer tapes, yielding higher-order
// derivatives.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{}, backend)
//
//	tape := backend.NewTape()
//	tape.Watch(x.Raw())
//	y := x.Mul(x) // y = x²
//	grads, _ := tape.Gradient(y.Raw(), x.Raw())
//	tape.Close()
//	// grads[0] holds dy/dx = 2x = 6
package autodiff

import (
	"github.com/gradtape/gradtape/internal/autodiff/ops"
	"github.com/gradtape/gradtape/internal/tensor"
)

// Backend wraps a compute backend and records operations on gradient
// tapes. It implements tensor.Backend, so tensors created on it behave
// like tensors on the inner backend until a tape starts recording.
type Backend[B tensor.Backend] struct {
	inner B
	tapes []*GradientTape // attachment order; innermost tape last
}

// New creates an autodiff backend wrapping the given compute backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return &Backend[B]{inner: backend}
}

// Inner returns the wrapped compute backend.
func (b *Backend[B]) Inner() B { return b.inner }

// Name returns the decorated backend name.
func (b *Backend[B]) Name() string { return "Autodiff(" + b.inner.Name() + ")" }

// Device returns the compute device.
func (b *Backend[B]) Device() tensor.Device { return b.inner.Device() }

// NewTape creates a gradient tape, attaches it, and starts recording.
// Close the tape to detach it.
func (b *Backend[B]) NewTape(opts ...TapeOption) *GradientTape {
	t := &GradientTape{
		backend:   b,
		detach:    b.detachTape,
		ops:       make([]ops.Operation, 0, 64),
		watched:   make(map[*tensor.RawTensor]bool),
		recording: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	b.tapes = append(b.tapes, t)
	return t
}

// Tape returns the innermost attached tape, or nil when none is attached.
func (b *Backend[B]) Tape() *GradientTape {
	if len(b.tapes) == 0 {
		return nil
	}
	return b.tapes[len(b.tapes)-1]
}

func (b *Backend[B]) detachTape(t *GradientTape) {
	for i, attached := range b.tapes {
		if attached == t {
			b.tapes = append(b.tapes[:i], b.tapes[i+1:]...)
			return
		}
	}
}

// record hands a completed operation to every recording tape.
func (b *Backend[B]) record(op ops.Operation) {
	for _, t := range b.tapes {
		t.Record(op)
	}
}

// recordingAny reports whether any attached tape is recording.
func (b *Backend[B]) recordingAny() bool {
	for _, t := range b.tapes {
		if t.recording {
			return true
		}
	}
	return false
}

// watchVariable marks a trainable variable's value as watched on every
// recording tape. Called on Variable reads.
func (b *Backend[B]) watchVariable(raw *tensor.RawTensor) {
	for _, t := range b.tapes {
		if t.recording {
			t.Watch(raw)
		}
	}
}

// Add runs element-wise addition and records it.
//
// Operand buffers are pinned (ForceNonUnique) for the duration of the
// forward call: the inner backend's inplace fast path would otherwise
// overwrite an input the recorded graph still refers to.
func (b *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Add(x, y)
	if b.recordingAny() {
		b.record(ops.NewAddOp(x, y, result))
	}
	return result
}

// Sub runs element-wise subtraction and records it.
func (b *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Sub(x, y)
	if b.recordingAny() {
		b.record(ops.NewSubOp(x, y, result))
	}
	return result
}

// Mul runs element-wise multiplication and records it.
func (b *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Mul(x, y)
	if b.recordingAny() {
		b.record(ops.NewMulOp(x, y, result))
	}
	return result
}

// Div runs element-wise division and records it.
func (b *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Div(x, y)
	if b.recordingAny() {
		b.record(ops.NewDivOp(x, y, result))
	}
	return result
}

// MatMul runs matrix multiplication and records it.
func (b *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.MatMul(x, y)
	if b.recordingAny() {
		b.record(ops.NewMatMulOp(x, y, result))
	}
	return result
}

// Neg negates and records.
func (b *Backend[B]) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Neg(x)
	if b.recordingAny() {
		b.record(ops.NewNegOp(x, result))
	}
	return result
}

// Exp exponentiates and records.
func (b *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Exp(x)
	if b.recordingAny() {
		b.record(ops.NewExpOp(x, result))
	}
	return result
}

// Log takes the natural logarithm and records.
func (b *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Log(x)
	if b.recordingAny() {
		b.record(ops.NewLogOp(x, result))
	}
	return result
}

// Sqrt takes the square root and records.
func (b *Backend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Sqrt(x)
	if b.recordingAny() {
		b.record(ops.NewSqrtOp(x, result))
	}
	return result
}

// Tanh applies tanh and records.
func (b *Backend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Tanh(x)
	if b.recordingAny() {
		b.record(ops.NewTanhOp(x, result))
	}
	return result
}

// Sigmoid applies the logistic function and records.
func (b *Backend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Sigmoid(x)
	if b.recordingAny() {
		b.record(ops.NewSigmoidOp(x, result))
	}
	return result
}

// ReLU applies max(0, x) and records.
func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.ReLU(x)
	if b.recordingAny() {
		b.record(ops.NewReLUOp(x, result))
	}
	return result
}

// PowScalar raises to a constant power and records.
func (b *Backend[B]) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.PowScalar(x, p)
	if b.recordingAny() {
		b.record(ops.NewPowOp(x, result, p))
	}
	return result
}

// AddScalar adds a constant and records.
func (b *Backend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.AddScalar(x, scalar)
	if b.recordingAny() {
		b.record(ops.NewAddScalarOp(x, result))
	}
	return result
}

// MulScalar multiplies by a constant and records.
func (b *Backend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.MulScalar(x, scalar)
	if b.recordingAny() {
		b.record(ops.NewMulScalarOp(x, result, scalar))
	}
	return result
}

// Sum reduces to a scalar and records.
func (b *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Sum(x)
	if b.recordingAny() {
		b.record(ops.NewSumOp(x, result))
	}
	return result
}

// SumDim reduces along one dimension and records.
func (b *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.SumDim(x, dim, keepDim)
	if b.recordingAny() {
		b.record(ops.NewSumDimOp(x, result, dim, keepDim))
	}
	return result
}

// Mean reduces to the average and records.
func (b *Backend[B]) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Mean(x)
	if b.recordingAny() {
		b.record(ops.NewMeanOp(x, result))
	}
	return result
}

// Reshape changes the shape and records.
func (b *Backend[B]) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Reshape(x, newShape)
	if b.recordingAny() {
		b.record(ops.NewReshapeOp(x, result))
	}
	return result
}

// Transpose permutes dimensions and records.
func (b *Backend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	// Normalize the default permutation here so the recorded op can
	// invert it during backward.
	ndim := len(x.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	result := b.inner.Transpose(x, axes...)
	if b.recordingAny() {
		b.record(ops.NewTransposeOp(x, result, axes))
	}
	return result
}

// Cast converts the dtype and records.
func (b *Backend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.Cast(x, dtype)
	if b.recordingAny() {
		b.record(ops.NewCastOp(x, result))
	}
	return result
}

var _ tensor.Backend = (*Backend[tensor.Backend])(nil)
