package cpu

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/gradtape/gradtape/internal/parallel"
	"github.com/gradtape/gradtape/internal/tensor"
)

// number covers the dtypes supported by arithmetic kernels.
type number interface {
	constraints.Float | ~int32 | ~int64
}

// Element-wise loops. dst may alias a for inplace execution.

func addSlice[T number](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func subSlice[T number](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func mulSlice[T number](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

func divSlice[T number](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] / b[i]
	}
}

// matmulConfig controls row-parallelism of matmul kernels. Output rows
// are disjoint, so rows split across workers without synchronization.
var matmulConfig = parallel.Config{
	Enabled:      parallel.DefaultConfig().Enabled,
	NumWorkers:   parallel.DefaultConfig().NumWorkers,
	MinChunkSize: 8,
}

func matmulSlice[T constraints.Float](dst, a, b []T, m, k, n int) {
	parallel.For(m, func(i int) {
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			row := b[p*n : (p+1)*n]
			out := dst[i*n : (i+1)*n]
			for j := range row {
				out[j] += av * row[j]
			}
		}
	}, matmulConfig)
}

// kernelSet dispatches one element-wise operation across dtypes.
type kernelSet struct {
	f32 func(dst, a, b []float32)
	f64 func(dst, a, b []float64)
	i32 func(dst, a, b []int32)
	i64 func(dst, a, b []int64)

	// scalar forms used by the broadcast path
	bf32 func(x, y float32) float32
	bf64 func(x, y float64) float64
	bi32 func(x, y int32) int32
	bi64 func(x, y int64) int64
}

var addKernels = kernelSet{
	f32: addSlice[float32], f64: addSlice[float64],
	i32: addSlice[int32], i64: addSlice[int64],
	bf32: func(x, y float32) float32 { return x + y },
	bf64: func(x, y float64) float64 { return x + y },
	bi32: func(x, y int32) int32 { return x + y },
	bi64: func(x, y int64) int64 { return x + y },
}

var subKernels = kernelSet{
	f32: subSlice[float32], f64: subSlice[float64],
	i32: subSlice[int32], i64: subSlice[int64],
	bf32: func(x, y float32) float32 { return x - y },
	bf64: func(x, y float64) float64 { return x - y },
	bi32: func(x, y int32) int32 { return x - y },
	bi64: func(x, y int64) int64 { return x - y },
}

var mulKernels = kernelSet{
	f32: mulSlice[float32], f64: mulSlice[float64],
	i32: mulSlice[int32], i64: mulSlice[int64],
	bf32: func(x, y float32) float32 { return x * y },
	bf64: func(x, y float64) float64 { return x * y },
	bi32: func(x, y int32) int32 { return x * y },
	bi64: func(x, y int64) int64 { return x * y },
}

var divKernels = kernelSet{
	f32: divSlice[float32], f64: divSlice[float64],
	i32: divSlice[int32], i64: divSlice[int64],
	bf32: func(x, y float32) float32 { return x / y },
	bf64: func(x, y float64) float64 { return x / y },
	bi32: func(x, y int32) int32 { return x / y },
	bi64: func(x, y int64) int64 { return x / y },
}

// run executes the same-shape fast path.
func (k kernelSet) run(name string, dst, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		k.f32(dst.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		k.f64(dst.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	case tensor.Int32:
		k.i32(dst.AsInt32(), a.AsInt32(), b.AsInt32())
	case tensor.Int64:
		k.i64(dst.AsInt64(), a.AsInt64(), b.AsInt64())
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
}

// runBroadcast executes the general broadcasting path.
func (k kernelSet) runBroadcast(name string, dst, a, b *tensor.RawTensor, outShape tensor.Shape) {
	switch a.DType() {
	case tensor.Float32:
		broadcastBinary(dst.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, k.bf32)
	case tensor.Float64:
		broadcastBinary(dst.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, k.bf64)
	case tensor.Int32:
		broadcastBinary(dst.AsInt32(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, k.bi32)
	case tensor.Int64:
		broadcastBinary(dst.AsInt64(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), outShape, k.bi64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
}
