package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtape/gradtape/internal/autodiff"
	"github.com/gradtape/gradtape/internal/backend/cpu"
	"github.com/gradtape/gradtape/internal/tensor"
)

func scalar(t *testing.T, v float32, b tensor.Backend) *tensor.Tensor[float32, tensor.Backend] {
	t.Helper()
	x, err := tensor.FromSlice([]float32{v}, tensor.Shape{}, b)
	require.NoError(t, err)
	return x
}

func TestBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestTape_RecordsWhileAttached(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 2, b)

	// No tape attached yet: nothing recorded.
	_ = x.Mul(x)
	assert.Nil(t, backend.Tape())

	tape := backend.NewTape()
	defer tape.Close()
	assert.True(t, tape.IsRecording())

	_ = x.Mul(x)
	assert.Equal(t, 1, tape.NumOps())
}

func TestTape_StopResume(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	tape := backend.NewTape()
	defer tape.Close()

	x := scalar(t, 2, b)

	tape.Stop()
	_ = x.Mul(x)
	assert.Equal(t, 0, tape.NumOps(), "ops while stopped are invisible")

	tape.Resume()
	_ = x.Mul(x)
	assert.Equal(t, 1, tape.NumOps())
}

func TestTape_GradientOfSquare(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 3, b)

	tape := backend.NewTape()
	defer tape.Close()
	tape.Watch(x.Raw())

	y := x.Mul(x) // y = x²

	grads, err := tape.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err)
	require.Len(t, grads, 1)
	require.NotNil(t, grads[0])
	assert.InDelta(t, 6.0, grads[0].AsFloat32()[0], 1e-6) // dy/dx = 2x
}

func TestTape_GradientOfCube(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 2, b)

	tape := backend.NewTape()
	defer tape.Close()
	tape.Watch(x.Raw())

	y := x.Mul(x).Mul(x) // y = x³

	grads, err := tape.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err)
	require.NotNil(t, grads[0])
	assert.InDelta(t, 12.0, grads[0].AsFloat32()[0], 1e-6) // dy/dx = 3x²
}

func TestTape_UnwatchedValueYieldsNilGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 3, b)

	tape := backend.NewTape()
	defer tape.Close()
	// Deliberately no Watch: x counts as a constant.

	y := x.Mul(x)

	grads, err := tape.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err, "asking for an unwatched gradient is not an error")
	assert.Nil(t, grads[0])
}

func TestTape_NonPersistentSingleUse(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 3, b)

	tape := backend.NewTape()
	defer tape.Close()
	tape.Watch(x.Raw())

	y := x.Mul(x)

	_, err := tape.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err)

	// The record is released after the first query.
	_, err = tape.Gradient(y.Raw(), x.Raw())
	assert.Error(t, err)
}

func TestTape_PersistentAllowsRepeatedQueries(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 3, b)

	tape := backend.NewTape(autodiff.Persistent())
	defer tape.Close()
	tape.Watch(x.Raw())

	y := x.Mul(x)        // y = x²
	z := y.Mul(x)        // z = x³

	gy, err := tape.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err)
	assert.InDelta(t, 6.0, gy[0].AsFloat32()[0], 1e-6)

	gz, err := tape.Gradient(z.Raw(), x.Raw())
	require.NoError(t, err)
	assert.InDelta(t, 27.0, gz[0].AsFloat32()[0], 1e-6)
}

func TestTape_GradientAccumulatesOnFanOut(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 4, b)

	tape := backend.NewTape()
	defer tape.Close()
	tape.Watch(x.Raw())

	// y = x² + x: gradient contributions from both uses of x must add up.
	y := x.Mul(x).Add(x)

	grads, err := tape.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err)
	assert.InDelta(t, 9.0, grads[0].AsFloat32()[0], 1e-6) // 2x + 1
}

func TestTape_MultipleSources(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 3, b)
	w := scalar(t, 5, b)
	c := scalar(t, 7, b)

	tape := backend.NewTape()
	defer tape.Close()
	tape.Watch(x.Raw())
	tape.Watch(w.Raw())

	// y = w*x + c, with c left unwatched.
	y := w.Mul(x).Add(c)

	grads, err := tape.Gradient(y.Raw(), x.Raw(), w.Raw(), c.Raw())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, grads[0].AsFloat32()[0], 1e-6) // dy/dx = w
	assert.InDelta(t, 3.0, grads[1].AsFloat32()[0], 1e-6) // dy/dw = x
	assert.Nil(t, grads[2])
}

func TestTape_Reset(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	tape := backend.NewTape()
	defer tape.Close()

	x := scalar(t, 2, b)
	tape.Watch(x.Raw())
	_ = x.Mul(x)
	require.Equal(t, 1, tape.NumOps())

	tape.Reset()
	assert.Equal(t, 0, tape.NumOps())
	assert.False(t, tape.IsWatched(x.Raw()))
	assert.True(t, tape.IsRecording(), "reset keeps the tape recording")
}

func TestTape_CloseDetaches(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	tape := backend.NewTape()
	require.Same(t, tape, backend.Tape())

	tape.Close()
	assert.Nil(t, backend.Tape())

	// Ops after Close are not recorded anywhere.
	x := scalar(t, 2, b)
	_ = x.Mul(x)
	assert.Equal(t, 0, tape.NumOps())
}

func TestNestedTapes_SecondDerivative(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	x := scalar(t, 3, b)

	outer := backend.NewTape()
	defer outer.Close()
	outer.Watch(x.Raw())

	inner := backend.NewTape()
	inner.Watch(x.Raw())

	y := x.Mul(x).Mul(x) // y = x³

	first, err := inner.Gradient(y.Raw(), x.Raw())
	require.NoError(t, err)
	inner.Close()
	require.NotNil(t, first[0])
	assert.InDelta(t, 27.0, first[0].AsFloat32()[0], 1e-6) // 3x²

	// The inner backward pass was recorded on the outer tape.
	second, err := outer.Gradient(first[0], x.Raw())
	require.NoError(t, err)
	require.NotNil(t, second[0])
	assert.InDelta(t, 18.0, second[0].AsFloat32()[0], 1e-5) // 6x
}

func TestBackward_FullGradientMap(t *testing.T) {
	backend := autodiff.New(cpu.New())

	x, err := tensor.FromSlice([]float32{2}, tensor.Shape{}, backend)
	require.NoError(t, err)

	tape := backend.NewTape()
	defer tape.Close()

	y := x.Mul(x)

	grads, err := autodiff.Backward(y, backend)
	require.NoError(t, err)
	// The map form ignores the watch filter.
	require.Contains(t, grads, x.Raw())
	assert.InDelta(t, 4.0, grads[x.Raw()].AsFloat32()[0], 1e-6)
}

func TestBackward_NoTape(t *testing.T) {
	backend := autodiff.New(cpu.New())

	x, err := tensor.FromSlice([]float32{2}, tensor.Shape{}, backend)
	require.NoError(t, err)

	_, err = autodiff.Backward(x, backend)
	assert.Error(t, err)
}
