package cpu

import (
	"fmt"

	"github.com/gradtape/gradtape/internal/tensor"
)

// Sum reduces all elements to a 0-D tensor.
func (c *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw("sum", tensor.Shape{}, x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		var acc float32
		for _, v := range x.AsFloat32() {
			acc += v
		}
		result.AsFloat32()[0] = acc
	case tensor.Float64:
		var acc float64
		for _, v := range x.AsFloat64() {
			acc += v
		}
		result.AsFloat64()[0] = acc
	case tensor.Int32:
		var acc int32
		for _, v := range x.AsInt32() {
			acc += v
		}
		result.AsInt32()[0] = acc
	case tensor.Int64:
		var acc int64
		for _, v := range x.AsInt64() {
			acc += v
		}
		result.AsInt64()[0] = acc
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// Mean reduces all elements to their average as a 0-D tensor.
func (c *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("mean: unsupported dtype %s (float32/float64 only)", x.DType()))
	}
	return c.MulScalar(c.Sum(x), 1.0/float64(x.NumElements()))
}

// SumDim sums along dim. With keepDim the reduced dimension stays as size 1,
// otherwise it is removed from the shape.
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sum_dim: dim %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			outShape = append(outShape, d)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result := mustNewRaw("sum_dim", outShape, x.DType(), c.device)

	outer := 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	size := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		sumDimSlice(result.AsFloat32(), x.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		sumDimSlice(result.AsFloat64(), x.AsFloat64(), outer, size, inner)
	case tensor.Int32:
		sumDimSlice(result.AsInt32(), x.AsInt32(), outer, size, inner)
	case tensor.Int64:
		sumDimSlice(result.AsInt64(), x.AsInt64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("sum_dim: unsupported dtype %s", x.DType()))
	}

	return result
}

func sumDimSlice[T number](dst, src []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for k := 0; k < size; k++ {
			base := (o*size + k) * inner
			out := dst[o*inner : (o+1)*inner]
			for i := range out {
				out[i] += src[base+i]
			}
		}
	}
}
