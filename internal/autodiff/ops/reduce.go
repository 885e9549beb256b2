package ops

import "github.com/gradtape/gradtape/internal/tensor"

// SumOp records output = Σx (0-D result).
type SumOp struct{ unaryOp }

// NewSumOp creates a SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{unaryOp{input: x, output: output}}
}

// Backward: every element contributed with weight 1, so the scalar
// gradient is broadcast back over the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandTo(outputGrad, op.input.Shape(), backend)}
}

// MeanOp records output = Σx / n (0-D result).
type MeanOp struct{ unaryOp }

// NewMeanOp creates a MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{unaryOp{input: x, output: output}}
}

// Backward: like Sum, scaled by 1/n.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := float64(op.input.NumElements())
	grad := expandTo(outputGrad, op.input.Shape(), backend)
	return []*tensor.RawTensor{backend.MulScalar(grad, 1.0/n)}
}

// SumDimOp records output = sum of x along one dimension.
type SumDimOp struct {
	unaryOp
	dim     int
	keepDim bool
}

// NewSumDimOp creates a SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{unaryOp{input: x, output: output}, dim, keepDim}
}

// Backward: restore the reduced dimension as size 1, then broadcast the
// gradient along it.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := outputGrad
	if !op.keepDim {
		keepShape := make(tensor.Shape, 0, len(op.input.Shape()))
		for i, d := range op.input.Shape() {
			if i == op.dim {
				keepShape = append(keepShape, 1)
			} else {
				keepShape = append(keepShape, d)
			}
		}
		grad = backend.Reshape(grad, keepShape)
	}
	return []*tensor.RawTensor{expandTo(grad, op.input.Shape(), backend)}
}
