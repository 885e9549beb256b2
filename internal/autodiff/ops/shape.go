package ops

import "github.com/gradtape/gradtape/internal/tensor"

// ReshapeOp records a shape change. Without it, gradients computed for
// the reshaped tensor would never reach the original one.
type ReshapeOp struct{ unaryOp }

// NewReshapeOp creates a ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unaryOp{input: x, output: output}}
}

// Backward: reshape the gradient back to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// TransposeOp records a dimension permutation. Recording it matters even
// though a transpose is conceptually a view: the backend produces a new
// tensor, and gradients for that new tensor must flow back to the
// original (e.g. a weight matrix transposed inside a linear layer).
type TransposeOp struct {
	unaryOp
	axes []int
}

// NewTransposeOp creates a TransposeOp.
func NewTransposeOp(x, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{unaryOp{input: x, output: output}, axes}
}

// Backward: apply the inverse permutation to the gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// CastOp records a dtype conversion.
type CastOp struct{ unaryOp }

// NewCastOp creates a CastOp.
func NewCastOp(x, output *tensor.RawTensor) *CastOp {
	return &CastOp{unaryOp{input: x, output: output}}
}

// Backward: cast the gradient back to the input dtype.
func (op *CastOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Cast(outputGrad, op.input.DType())}
}
