package cpu

import (
	"fmt"
	"math"

	"github.com/gradtape/gradtape/internal/tensor"
)

// PowScalar raises each element to the power p.
func (c *Backend) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	return c.applyFloat("pow", x, func(v float64) float64 { return math.Pow(v, p) })
}

// AddScalar adds a scalar to every element.
func (c *Backend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return c.scalarOp("add_scalar", x, scalar,
		func(v, s float64) float64 { return v + s },
		func(v, s int64) int64 { return v + s })
}

// MulScalar multiplies every element by a scalar.
func (c *Backend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return c.scalarOp("mul_scalar", x, scalar,
		func(v, s float64) float64 { return v * s },
		func(v, s int64) int64 { return v * s })
}

// scalarOp applies a scalar combiner element-wise. Integer tensors
// truncate the scalar toward zero.
func (c *Backend) scalarOp(name string, x *tensor.RawTensor, scalar float64,
	ff func(v, s float64) float64, fi func(v, s int64) int64) *tensor.RawTensor {

	switch x.DType() {
	case tensor.Float32, tensor.Float64:
		return c.applyFloat(name, x, func(v float64) float64 { return ff(v, scalar) })
	case tensor.Int32:
		result := mustNewRaw(name, x.Shape(), x.DType(), c.device)
		src, dst := x.AsInt32(), result.AsInt32()
		s := int64(scalar)
		for i, v := range src {
			dst[i] = int32(fi(int64(v), s))
		}
		return result
	case tensor.Int64:
		result := mustNewRaw(name, x.Shape(), x.DType(), c.device)
		src, dst := x.AsInt64(), result.AsInt64()
		s := int64(scalar)
		for i, v := range src {
			dst[i] = fi(v, s)
		}
		return result
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
}
