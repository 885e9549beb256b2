package nn

import (
	"github.com/gradtape/gradtape/internal/tensor"
)

// MSELoss computes mean squared error: mean((predictions - targets)²).
//
// The whole computation runs through the backend, so the loss is
// differentiable end to end when a tape records.
type MSELoss[B tensor.Backend] struct{}

// NewMSELoss creates an MSE loss function.
func NewMSELoss[B tensor.Backend]() *MSELoss[B] {
	return &MSELoss[B]{}
}

// Forward returns the scalar loss for predictions against targets of
// the same shape.
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic("MSELoss: predictions and targets must have the same shape")
	}

	diff := predictions.Sub(targets)
	return diff.Mul(diff).Mean()
}

// Parameters returns nil; loss functions are parameter-free.
func (m *MSELoss[B]) Parameters() []*Parameter[B] { return nil }
