// Package cpu implements the pure-Go CPU compute backend.
package cpu

import (
	"fmt"

	"github.com/gradtape/gradtape/internal/tensor"
)

// Backend implements tensor.Backend on the CPU.
//
// Binary operations take an inplace fast path when the left operand's
// buffer is unique (refcount == 1) and no broadcasting is needed. The
// autodiff backend pins operands with ForceNonUnique to opt out.
type Backend struct {
	device tensor.Device
}

// New creates a CPU backend.
func New() *Backend {
	return &Backend{device: tensor.CPU}
}

// Name returns the backend name.
func (c *Backend) Name() string { return "CPU" }

// Device returns the compute device.
func (c *Backend) Device() tensor.Device { return c.device }

var _ tensor.Backend = (*Backend)(nil)

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("add", a, b, addKernels)
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("sub", a, b, subKernels)
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("mul", a, b, mulKernels)
}

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("div", a, b, divKernels)
}

// binary runs a broadcast-aware element-wise operation.
func (c *Backend) binary(name string, a, b *tensor.RawTensor, k kernelSet) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			// Inplace fast path: overwrite a.
			k.run(name, a, a, b)
			return a
		}
		result := mustNewRaw(name, outShape, a.DType(), c.device)
		k.run(name, result, a, b)
		return result
	}

	result := mustNewRaw(name, outShape, a.DType(), c.device)
	k.runBroadcast(name, result, a, b, outShape)
	return result
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v @ %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	result := mustNewRaw("matmul", tensor.Shape{m, n}, a.DType(), c.device)

	switch a.DType() {
	case tensor.Float32:
		matmulSlice(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		matmulSlice(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// mustNewRaw allocates a result tensor or panics with an op-prefixed message.
func mustNewRaw(name string, shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	return result
}
