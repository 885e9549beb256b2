package cpu

import (
	"fmt"
	"math"

	"github.com/gradtape/gradtape/internal/tensor"
)

// applyFloat evaluates f element-wise into a fresh tensor.
// Only float dtypes are supported; f works in float64 and results are
// narrowed for float32 tensors.
func (c *Backend) applyFloat(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := mustNewRaw(name, x.Shape(), x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (float32/float64 only)", name, x.DType()))
	}

	return result
}

// Neg returns -x.
func (c *Backend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Int32:
		result := mustNewRaw("neg", x.Shape(), x.DType(), c.device)
		src, dst := x.AsInt32(), result.AsInt32()
		for i, v := range src {
			dst[i] = -v
		}
		return result
	case tensor.Int64:
		result := mustNewRaw("neg", x.Shape(), x.DType(), c.device)
		src, dst := x.AsInt64(), result.AsInt64()
		for i, v := range src {
			dst[i] = -v
		}
		return result
	default:
		return c.applyFloat("neg", x, func(v float64) float64 { return -v })
	}
}

// Exp returns e^x element-wise.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.applyFloat("exp", x, math.Exp)
}

// Log returns the natural logarithm element-wise.
// Non-positive inputs produce NaN/-Inf, matching math.Log.
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.applyFloat("log", x, math.Log)
}

// Sqrt returns the square root element-wise.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.applyFloat("sqrt", x, math.Sqrt)
}

// Tanh returns the hyperbolic tangent element-wise.
func (c *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return c.applyFloat("tanh", x, math.Tanh)
}

// Sigmoid returns 1 / (1 + e^-x) element-wise.
func (c *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return c.applyFloat("sigmoid", x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}

// ReLU returns max(0, x) element-wise.
func (c *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.applyFloat("relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}
