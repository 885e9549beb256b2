package cpu

import "github.com/gradtape/gradtape/internal/tensor"

// broadcastStrides returns per-output-dimension strides into a tensor of
// the given shape, with 0 for broadcast dimensions (size 1 or missing).
func broadcastStrides(shape, out tensor.Shape) []int {
	strides := shape.ComputeStrides()
	result := make([]int, len(out))
	offset := len(out) - len(shape)
	for i := range out {
		if i < offset || shape[i-offset] == 1 {
			result[i] = 0
		} else {
			result[i] = strides[i-offset]
		}
	}
	return result
}

// broadcastBinary evaluates dst[i] = f(a[...], b[...]) with NumPy-style
// broadcasting, walking the output index space odometer-style.
func broadcastBinary[T any](dst, a, b []T, aShape, bShape, outShape tensor.Shape, f func(x, y T) T) {
	aStr := broadcastStrides(aShape, outShape)
	bStr := broadcastStrides(bShape, outShape)

	n := outShape.NumElements()
	idx := make([]int, len(outShape))
	ai, bi := 0, 0

	for flat := 0; flat < n; flat++ {
		dst[flat] = f(a[ai], b[bi])

		for d := len(outShape) - 1; d >= 0; d-- {
			idx[d]++
			ai += aStr[d]
			bi += bStr[d]
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
			ai -= aStr[d] * outShape[d]
			bi -= bStr[d] * outShape[d]
		}
	}
}
