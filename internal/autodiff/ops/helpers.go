package ops

import (
	"fmt"

	"github.com/gradtape/gradtape/internal/tensor"
)

// reduceBroadcast reduces a gradient to the shape of a forward-pass input.
// When broadcasting widened an input during the forward pass, the chain
// rule requires summing the gradient over the broadcast dimensions.
//
// All reductions run through the backend so that outer tapes can record
// them.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		// Returned as-is: accumulation goes through the autodiff
		// backend, which pins operands against inplace reuse, and a
		// clone would hide the tensor from outer tapes.
		return grad
	}

	if targetShape.IsScalar() {
		return backend.Sum(grad)
	}

	result := grad
	// Sum away the extra leading dimensions first.
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Then sum the dimensions the input held as size 1.
	for i, dim := range targetShape {
		if dim == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// ones allocates a tensor of ones. The result is a constant from the
// tape's point of view.
func ones(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("ones: %v", err))
	}

	switch dtype {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(fmt.Sprintf("ones: unsupported dtype %s", dtype))
	}
	return result
}

// expandTo broadcasts a reduced gradient back over the shape it was
// reduced from, via multiplication with a ones tensor.
func expandTo(grad *tensor.RawTensor, shape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	return backend.Mul(ones(shape, grad.DType(), grad.Device()), grad)
}
