// Package nn provides small trainable building blocks on top of the
// gradient tape: parameters, a fully connected layer, activations, a
// sequential container, and loss functions.
//
// Every forward pass runs through the backend, so a recording tape sees
// all of it; parameters auto-watch themselves on read.
package nn

import (
	"github.com/gradtape/gradtape/internal/tensor"
)

// Module is the base interface for network components.
//
// Modules compose into larger models:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(4, 16, backend),
//	    nn.NewTanh[B](),
//	    nn.NewLinear(16, 1, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module output. Linear expects
	// [batch, in_features]; activations accept any shape.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters, including those of
	// nested modules. Parameter-free modules return nil.
	Parameters() []*Parameter[B]
}
