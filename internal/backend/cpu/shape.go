package cpu

import (
	"fmt"

	"github.com/gradtape/gradtape/internal/tensor"
)

// Reshape returns a tensor sharing the same buffer with a new shape.
// The element count must be unchanged.
func (c *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	result := mustNewRaw("reshape", newShape, t.DType(), c.device)
	copy(result.Data(), t.Data()[:t.ByteSize()])
	return result
}

// Transpose permutes dimensions. Empty axes reverse all dimensions.
// Data is copied into contiguous row-major order.
func (c *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes permutation %v for shape %v", axes, shape))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result := mustNewRaw("transpose", outShape, t.DType(), c.device)

	// Source strides reordered to the output dimension order.
	srcStrides := shape.ComputeStrides()
	strides := make([]int, ndim)
	for i, ax := range axes {
		strides[i] = srcStrides[ax]
	}

	es := t.DType().Size()
	src, dst := t.Data(), result.Data()
	idx := make([]int, ndim)
	si := 0
	n := outShape.NumElements()

	for flat := 0; flat < n; flat++ {
		copy(dst[flat*es:(flat+1)*es], src[si*es:si*es+es])

		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			si += strides[d]
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
			si -= strides[d] * outShape[d]
		}
	}

	return result
}
