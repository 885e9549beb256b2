package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtape/gradtape/internal/autodiff"
	"github.com/gradtape/gradtape/internal/backend/cpu"
	"github.com/gradtape/gradtape/internal/tensor"
)

func TestVariable_AutoWatchedOnRead(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))
	x := scalar(t, 3, b)

	tape := backend.NewTape()
	defer tape.Close()
	// No Watch call anywhere: reading w must be enough.

	y := w.Value().Mul(x)

	grads, err := tape.Gradient(y.Raw(), w.Raw())
	require.NoError(t, err)
	require.NotNil(t, grads[0], "trainable variable read under a recording tape must be watched")
	assert.InDelta(t, 3.0, grads[0].AsFloat32()[0], 1e-6)

	// x was a plain tensor and stays invisible.
	assert.False(t, tape.IsWatched(x.Raw()))
}

func TestVariable_ReadBeforeTapeIsNotWatched(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))
	_ = w.Value() // read with no tape attached

	tape := backend.NewTape()
	defer tape.Close()
	assert.False(t, tape.IsWatched(w.Raw()))
}

func TestVariable_ConstantNotAutoWatched(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	c := autodiff.NewConstantVariable("c", scalar(t, 7, b))
	x := scalar(t, 3, b)

	tape := backend.NewTape()
	defer tape.Close()
	tape.Watch(x.Raw())

	y := x.Mul(c.Value())

	grads, err := tape.Gradient(y.Raw(), x.Raw(), c.Raw())
	require.NoError(t, err)
	assert.InDelta(t, 7.0, grads[0].AsFloat32()[0], 1e-6)
	assert.Nil(t, grads[1], "constant variables produce nil gradients")
	assert.False(t, c.Trainable())
}

func TestVariable_StopReadIsNotWatched(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))

	tape := backend.NewTape()
	defer tape.Close()

	tape.Stop()
	_ = w.Value()
	tape.Resume()

	assert.False(t, tape.IsWatched(w.Raw()))
}

func TestVariable_Assign(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))
	require.NoError(t, w.Assign(scalar(t, 9, b)))
	assert.InDelta(t, 9.0, w.Value().Item(), 1e-6)

	bad, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)
	assert.Error(t, w.Assign(bad), "shape mismatch must be rejected")
}

func TestVariable_AssignIsNotRecorded(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))

	tape := backend.NewTape()
	defer tape.Close()

	require.NoError(t, w.Assign(scalar(t, 9, b)))
	assert.Equal(t, 0, tape.NumOps(), "parameter updates stay off the tape")
}

func TestVariable_AssignSub(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))
	require.NoError(t, w.AssignSub(scalar(t, 1.5, b)))
	assert.InDelta(t, 3.5, w.Value().Item(), 1e-6)
}

func TestVariable_IdentitySurvivesAssign(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("w", scalar(t, 5, b))
	raw := w.Raw()
	require.NoError(t, w.Assign(scalar(t, 9, b)))
	assert.Same(t, raw, w.Raw(), "assign must keep the raw tensor identity stable")
}

func TestVariable_String(t *testing.T) {
	backend := autodiff.New(cpu.New())
	var b tensor.Backend = backend

	w := autodiff.NewVariable("weight", scalar(t, 5, b))
	assert.Contains(t, w.String(), "weight")
	assert.Contains(t, w.String(), "trainable=true")
}
