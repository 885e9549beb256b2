// Package optim implements gradient-descent optimizers driven by the
// gradient maps a backward pass produces.
//
// A training step looks like:
//
//	tape := backend.NewTape()
//	pred := model.Forward(input)
//	loss := lossFn.Forward(pred, targets)
//	grads, err := autodiff.Backward(loss, backend)
//	tape.Close()
//	optimizer.Step(grads)
//
// Optimizers touch parameters only through their raw tensors, so
// updates never land on a tape and never watch anything.
package optim

import (
	"github.com/gradtape/gradtape/internal/nn"
	"github.com/gradtape/gradtape/internal/tensor"
)

// Optimizer updates parameters from a backward-pass gradient map.
type Optimizer interface {
	// Step applies one update. Parameters absent from the map (they
	// did not participate in the forward pass) are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR replaces the learning rate, for scheduling.
	SetLR(lr float32)
}

// getGradient looks up the gradient for a parameter by raw identity.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Raw()]
}
