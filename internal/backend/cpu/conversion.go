package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/gradtape/gradtape/internal/tensor"
)

// Cast converts a tensor to a different storage type. Float16 round-trips
// through IEEE 754 binary16 (github.com/x448/float16).
func (c *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result := mustNewRaw("cast", x.Shape(), dtype, c.device)

	n := x.NumElements()
	for i := 0; i < n; i++ {
		setAsFloat64(result, i, getAsFloat64(x, i))
	}

	return result
}

func getAsFloat64(x *tensor.RawTensor, i int) float64 {
	switch x.DType() {
	case tensor.Float32:
		return float64(x.AsFloat32()[i])
	case tensor.Float64:
		return x.AsFloat64()[i]
	case tensor.Float16:
		return float64(x.AsFloat16()[i].Float32())
	case tensor.Int32:
		return float64(x.AsInt32()[i])
	case tensor.Int64:
		return float64(x.AsInt64()[i])
	case tensor.Uint8:
		return float64(x.AsUint8()[i])
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}
}

func setAsFloat64(x *tensor.RawTensor, i int, v float64) {
	switch x.DType() {
	case tensor.Float32:
		x.AsFloat32()[i] = float32(v)
	case tensor.Float64:
		x.AsFloat64()[i] = v
	case tensor.Float16:
		x.AsFloat16()[i] = float16.Fromfloat32(float32(v))
	case tensor.Int32:
		x.AsInt32()[i] = int32(v)
	case tensor.Int64:
		x.AsInt64()[i] = int64(v)
	case tensor.Uint8:
		x.AsUint8()[i] = uint8(v)
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", x.DType()))
	}
}
