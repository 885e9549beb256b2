package cpu_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradtape/gradtape/internal/backend/cpu"
	"github.com/gradtape/gradtape/internal/tensor"
)

func TestUnaryMath(t *testing.T) {
	b := cpu.New()

	tests := []struct {
		name string
		op   func(x *tensor.RawTensor) *tensor.RawTensor
		in   []float32
		want []float32
	}{
		{"neg", b.Neg, []float32{1, -2, 0}, []float32{-1, 2, 0}},
		{"exp", b.Exp, []float32{0, 1}, []float32{1, float32(math.E)}},
		{"log", b.Log, []float32{1, float32(math.E)}, []float32{0, 1}},
		{"sqrt", b.Sqrt, []float32{4, 9}, []float32{2, 3}},
		{"relu", b.ReLU, []float32{-1, 0, 2}, []float32{0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := fromSlice(t, tt.in, tensor.Shape{len(tt.in)})
			got := tt.op(x).AsFloat32()
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestSigmoidTanh(t *testing.T) {
	b := cpu.New()
	x := fromSlice(t, []float32{0}, tensor.Shape{1})

	assert.InDelta(t, 0.5, b.Sigmoid(x).AsFloat32()[0], 1e-6)
	assert.InDelta(t, 0.0, b.Tanh(x).AsFloat32()[0], 1e-6)
}

func TestScalarOps(t *testing.T) {
	b := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})

	assert.Equal(t, []float32{3, 4, 5}, b.AddScalar(x, 2).AsFloat32())
	assert.Equal(t, []float32{2, 4, 6}, b.MulScalar(x, 2).AsFloat32())
	assert.Equal(t, []float32{1, 4, 9}, b.PowScalar(x, 2).AsFloat32())
}

func TestUnary_IntDTypePanics(t *testing.T) {
	b := cpu.New()
	x, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	assert.Panics(t, func() { b.Exp(x) })
}

func TestSum(t *testing.T) {
	b := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	total := b.Sum(x)
	assert.True(t, total.Shape().IsScalar())
	assert.Equal(t, float32(10), total.AsFloat32()[0])
}

func TestMean(t *testing.T) {
	b := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	assert.InDelta(t, 2.5, b.Mean(x).AsFloat32()[0], 1e-6)
}

func TestSumDim(t *testing.T) {
	b := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	rows := b.SumDim(x, 0, false)
	assert.True(t, rows.Shape().Equal(tensor.Shape{3}))
	assert.Equal(t, []float32{5, 7, 9}, rows.AsFloat32())

	cols := b.SumDim(x, 1, true)
	assert.True(t, cols.Shape().Equal(tensor.Shape{2, 1}))
	assert.Equal(t, []float32{6, 15}, cols.AsFloat32())

	assert.Panics(t, func() { b.SumDim(x, 2, false) })
}
