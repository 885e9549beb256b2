package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtape/gradtape/internal/autodiff/ops"
	"github.com/gradtape/gradtape/internal/backend/cpu"
	"github.com/gradtape/gradtape/internal/tensor"
)

func raw(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func onesRaw(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = 1
	}
	return raw(t, data, shape)
}

func TestAddOp_Backward(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := raw(t, []float32{4, 5, 6}, tensor.Shape{3})
	out := backend.Add(a, b)

	op := ops.NewAddOp(a, b, out)
	assert.Equal(t, []*tensor.RawTensor{a, b}, op.Inputs())
	assert.Same(t, out, op.Output())

	g := raw(t, []float32{10, 20, 30}, tensor.Shape{3})
	grads := op.Backward(g, backend)
	require.Len(t, grads, 2)
	assert.Equal(t, []float32{10, 20, 30}, grads[0].AsFloat32())
	assert.Equal(t, []float32{10, 20, 30}, grads[1].AsFloat32())
}

func TestAddOp_BackwardReducesBroadcast(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw(t, []float32{10, 20, 30}, tensor.Shape{3})
	out := backend.Add(a, b)
	require.Equal(t, tensor.Shape{2, 3}, out.Shape())

	op := ops.NewAddOp(a, b, out)
	g := onesRaw(t, tensor.Shape{2, 3})
	grads := op.Backward(g, backend)

	require.Equal(t, tensor.Shape{2, 3}, grads[0].Shape())
	require.Equal(t, tensor.Shape{3}, grads[1].Shape(), "broadcast input gets a reduced gradient")
	assert.Equal(t, []float32{2, 2, 2}, grads[1].AsFloat32())
}

func TestAddOp_BackwardReducesScalarBroadcast(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := raw(t, []float32{5}, tensor.Shape{})
	out := backend.Add(a, b)

	op := ops.NewAddOp(a, b, out)
	g := onesRaw(t, tensor.Shape{2, 2})
	grads := op.Backward(g, backend)

	require.True(t, grads[1].Shape().IsScalar())
	assert.Equal(t, float32(4), grads[1].AsFloat32()[0])
}

func TestSubOp_Backward(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{5, 7}, tensor.Shape{2})
	b := raw(t, []float32{1, 2}, tensor.Shape{2})
	out := backend.Sub(a, b)

	op := ops.NewSubOp(a, b, out)
	g := raw(t, []float32{1, 2}, tensor.Shape{2})
	grads := op.Backward(g, backend)

	assert.Equal(t, []float32{1, 2}, grads[0].AsFloat32())
	assert.Equal(t, []float32{-1, -2}, grads[1].AsFloat32())
}

func TestMulOp_Backward(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{2, 3}, tensor.Shape{2})
	b := raw(t, []float32{5, 7}, tensor.Shape{2})
	out := backend.Mul(a, b)

	op := ops.NewMulOp(a, b, out)
	g := onesRaw(t, tensor.Shape{2})
	grads := op.Backward(g, backend)

	assert.Equal(t, []float32{5, 7}, grads[0].AsFloat32(), "grad_a = g*b")
	assert.Equal(t, []float32{2, 3}, grads[1].AsFloat32(), "grad_b = g*a")
}

func TestDivOp_Backward(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{6}, tensor.Shape{})
	b := raw(t, []float32{2}, tensor.Shape{})
	out := backend.Div(a, b)

	op := ops.NewDivOp(a, b, out)
	g := onesRaw(t, tensor.Shape{})
	grads := op.Backward(g, backend)

	assert.InDelta(t, 0.5, grads[0].AsFloat32()[0], 1e-6)  // 1/b
	assert.InDelta(t, -1.5, grads[1].AsFloat32()[0], 1e-6) // -a/b²
}

func TestMatMulOp_Backward(t *testing.T) {
	backend := cpu.New()

	a := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := raw(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})
	out := backend.MatMul(a, b)

	op := ops.NewMatMulOp(a, b, out)
	g := onesRaw(t, tensor.Shape{2, 2})
	grads := op.Backward(g, backend)

	// grad_a = g @ bᵀ: each row is [5+6, 7+8].
	assert.Equal(t, []float32{11, 15, 11, 15}, grads[0].AsFloat32())
	// grad_b = aᵀ @ g: rows [1+3, 1+3] and [2+4, 2+4].
	assert.Equal(t, []float32{4, 4, 6, 6}, grads[1].AsFloat32())
}

func TestNegOp_Backward(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1, -2}, tensor.Shape{2})
	out := backend.Neg(x)

	op := ops.NewNegOp(x, out)
	g := raw(t, []float32{3, 4}, tensor.Shape{2})
	grads := op.Backward(g, backend)
	assert.Equal(t, []float32{-3, -4}, grads[0].AsFloat32())
}

func TestExpOp_BackwardReusesOutput(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{0, 1}, tensor.Shape{2})
	out := backend.Exp(x)

	op := ops.NewExpOp(x, out)
	g := onesRaw(t, tensor.Shape{2})
	grads := op.Backward(g, backend)
	assert.InDelta(t, 1.0, grads[0].AsFloat32()[0], 1e-6)
	assert.InDelta(t, 2.7182817, grads[0].AsFloat32()[1], 1e-5)
}

func TestReLUOp_BackwardMasksNonPositive(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{-1, 0, 2}, tensor.Shape{3})
	out := backend.ReLU(x)

	op := ops.NewReLUOp(x, out)
	g := raw(t, []float32{10, 10, 10}, tensor.Shape{3})
	grads := op.Backward(g, backend)
	assert.Equal(t, []float32{0, 0, 10}, grads[0].AsFloat32())
}

func TestPowOp_Backward(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{2}, tensor.Shape{})
	out := backend.PowScalar(x, 3)

	op := ops.NewPowOp(x, out, 3)
	g := onesRaw(t, tensor.Shape{})
	grads := op.Backward(g, backend)
	assert.InDelta(t, 12.0, grads[0].AsFloat32()[0], 1e-6) // 3x²
}

func TestSumOp_BackwardBroadcastsSeed(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	out := backend.Sum(x)

	op := ops.NewSumOp(x, out)
	g := raw(t, []float32{2}, tensor.Shape{})
	grads := op.Backward(g, backend)
	require.Equal(t, tensor.Shape{2, 2}, grads[0].Shape())
	assert.Equal(t, []float32{2, 2, 2, 2}, grads[0].AsFloat32())
}

func TestMeanOp_Backward(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	out := backend.Mean(x)

	op := ops.NewMeanOp(x, out)
	g := onesRaw(t, tensor.Shape{})
	grads := op.Backward(g, backend)
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, grads[0].AsFloat32())
}

func TestSumDimOp_Backward(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	out := backend.SumDim(x, 0, false)
	require.Equal(t, tensor.Shape{3}, out.Shape())

	op := ops.NewSumDimOp(x, out, 0, false)
	g := raw(t, []float32{10, 20, 30}, tensor.Shape{3})
	grads := op.Backward(g, backend)
	require.Equal(t, tensor.Shape{2, 3}, grads[0].Shape())
	assert.Equal(t, []float32{10, 20, 30, 10, 20, 30}, grads[0].AsFloat32())
}

func TestReshapeOp_BackwardRestoresShape(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	out := backend.Reshape(x, tensor.Shape{3, 2})

	op := ops.NewReshapeOp(x, out)
	g := onesRaw(t, tensor.Shape{3, 2})
	grads := op.Backward(g, backend)
	assert.Equal(t, tensor.Shape{2, 3}, grads[0].Shape())
}

func TestTransposeOp_BackwardInvertsPermutation(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	out := backend.Transpose(x, 1, 0)

	op := ops.NewTransposeOp(x, out, []int{1, 0})
	g := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	grads := op.Backward(g, backend)
	require.Equal(t, tensor.Shape{2, 3}, grads[0].Shape())
	// Transposing the (3,2) gradient back yields the column-major walk.
	assert.Equal(t, []float32{1, 3, 5, 2, 4, 6}, grads[0].AsFloat32())
}

func TestCastOp_BackwardCastsBack(t *testing.T) {
	backend := cpu.New()

	x := raw(t, []float32{1.5, 2.5}, tensor.Shape{2})
	out := backend.Cast(x, tensor.Float64)

	op := ops.NewCastOp(x, out)
	g, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(g.AsFloat64(), []float64{1, 2})

	grads := op.Backward(g, backend)
	require.Equal(t, tensor.Float32, grads[0].DType())
	assert.Equal(t, []float32{1, 2}, grads[0].AsFloat32())
}
