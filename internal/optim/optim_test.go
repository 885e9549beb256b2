package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtape/gradtape/internal/autodiff"
	"github.com/gradtape/gradtape/internal/backend/cpu"
	"github.com/gradtape/gradtape/internal/nn"
	"github.com/gradtape/gradtape/internal/optim"
	"github.com/gradtape/gradtape/internal/tensor"
)

func paramWith(t *testing.T, name string, data []float32, shape tensor.Shape, b tensor.Backend) *nn.Parameter[tensor.Backend] {
	t.Helper()
	v, err := tensor.FromSlice(data, shape, b)
	require.NoError(t, err)
	return nn.NewParameter(name, v)
}

func rawWith(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func TestSGD_Step(t *testing.T) {
	var b tensor.Backend = cpu.New()
	p := paramWith(t, "w", []float32{1, 2, 3}, tensor.Shape{3}, b)

	sgd := optim.NewSGD([]*nn.Parameter[tensor.Backend]{p}, optim.SGDConfig{LR: 0.1})

	grads := map[*tensor.RawTensor]*tensor.RawTensor{
		p.Raw(): rawWith(t, []float32{1, 10, 100}, tensor.Shape{3}),
	}
	sgd.Step(grads)

	got := p.Raw().AsFloat32()
	assert.InDelta(t, 0.9, got[0], 1e-6)
	assert.InDelta(t, 1.0, got[1], 1e-6)
	assert.InDelta(t, -7.0, got[2], 1e-6)
}

func TestSGD_SkipsParameterWithoutGradient(t *testing.T) {
	var b tensor.Backend = cpu.New()
	p := paramWith(t, "w", []float32{5}, tensor.Shape{1}, b)

	sgd := optim.NewSGD([]*nn.Parameter[tensor.Backend]{p}, optim.SGDConfig{LR: 0.1})
	sgd.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	assert.Equal(t, float32(5), p.Raw().AsFloat32()[0])
}

func TestSGD_Momentum(t *testing.T) {
	var b tensor.Backend = cpu.New()
	p := paramWith(t, "w", []float32{0}, tensor.Shape{1}, b)

	sgd := optim.NewSGD([]*nn.Parameter[tensor.Backend]{p}, optim.SGDConfig{LR: 1, Momentum: 0.5})

	grads := map[*tensor.RawTensor]*tensor.RawTensor{
		p.Raw(): rawWith(t, []float32{1}, tensor.Shape{1}),
	}

	// Step 1: v = 1, param = -1.
	sgd.Step(grads)
	assert.InDelta(t, -1.0, p.Raw().AsFloat32()[0], 1e-6)

	// Step 2: v = 0.5*1 + 1 = 1.5, param = -2.5.
	sgd.Step(grads)
	assert.InDelta(t, -2.5, p.Raw().AsFloat32()[0], 1e-6)
}

func TestSGD_DefaultLR(t *testing.T) {
	sgd := optim.NewSGD[tensor.Backend](nil, optim.SGDConfig{})
	assert.InDelta(t, 0.01, sgd.GetLR(), 1e-9)

	sgd.SetLR(0.5)
	assert.InDelta(t, 0.5, sgd.GetLR(), 1e-9)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	var b tensor.Backend = cpu.New()
	p := paramWith(t, "w", []float32{1}, tensor.Shape{1}, b)

	adam := optim.NewAdam([]*nn.Parameter[tensor.Backend]{p}, optim.AdamConfig{LR: 0.1})

	grads := map[*tensor.RawTensor]*tensor.RawTensor{
		p.Raw(): rawWith(t, []float32{3}, tensor.Shape{1}),
	}
	adam.Step(grads)

	// After bias correction the first step is ≈ lr regardless of the
	// gradient magnitude.
	assert.InDelta(t, 0.9, p.Raw().AsFloat32()[0], 1e-4)
	assert.Equal(t, 1, adam.Timestep())
}

func TestAdam_Defaults(t *testing.T) {
	adam := optim.NewAdam[tensor.Backend](nil, optim.AdamConfig{})
	assert.InDelta(t, 0.001, adam.GetLR(), 1e-9)
}

func TestTrainingLoop_LinearRegressionConverges(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Fit y = 2x - 1 from eight points with plain SGD.
	xs := []float32{-2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2}
	ys := make([]float32, len(xs))
	for i, x := range xs {
		ys[i] = 2*x - 1
	}

	input, err := tensor.FromSlice(xs, tensor.Shape{len(xs), 1}, tensor.Backend(backend))
	require.NoError(t, err)
	target, err := tensor.FromSlice(ys, tensor.Shape{len(ys), 1}, tensor.Backend(backend))
	require.NoError(t, err)

	model := nn.NewLinear[tensor.Backend](1, 1, backend)
	lossFn := nn.NewMSELoss[tensor.Backend]()
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	var lastLoss float32
	for epoch := 0; epoch < 200; epoch++ {
		tape := backend.NewTape()

		pred := model.Forward(input)
		loss := lossFn.Forward(pred, target)
		lastLoss = loss.Item()

		grads, err := tape.Gradient(loss.Raw(),
			model.Weight().Raw(), model.Bias().Raw())
		require.NoError(t, err)
		tape.Close()

		sgd.Step(map[*tensor.RawTensor]*tensor.RawTensor{
			model.Weight().Raw(): grads[0],
			model.Bias().Raw():   grads[1],
		})
	}

	assert.Less(t, lastLoss, float32(1e-3), "loss should approach zero")
	assert.InDelta(t, 2.0, model.Weight().Raw().AsFloat32()[0], 0.05)
	assert.InDelta(t, -1.0, model.Bias().Raw().AsFloat32()[0], 0.05)
}
