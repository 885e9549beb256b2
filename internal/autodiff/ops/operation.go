// Package ops defines the differentiable operations recorded on a gradient
// tape. Each operation keeps the raw tensors of its forward pass and knows
// how to turn the gradient of its output into gradients of its inputs.
//
// Backward rules run through a tensor.Backend. When that backend is itself
// an autodiff backend with outer tapes still recording, the backward pass
// is recorded too, which is what makes nested tapes (higher-order
// derivatives) work.
package ops

import "github.com/gradtape/gradtape/internal/tensor"

// Operation is one recorded step of a forward pass.
type Operation interface {
	// Backward computes input gradients given the output gradient.
	// The returned slice is index-aligned with Inputs(); a nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the operation's input tensors.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor produced by the operation.
	Output() *tensor.RawTensor
}
