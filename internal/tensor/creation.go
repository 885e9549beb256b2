package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // shape validated by callers creating literal shapes
	}
	// Buffer memory is already zeroed.
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, oneValue[T](), b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Scalar creates a 0-D tensor holding value.
func Scalar[T DType, B Backend](value T, b B) *Tensor[T, B] {
	return Full[T, B](Shape{}, value, b)
}

// Randn creates a float tensor with values drawn from N(0, 1).
// Uses math/rand; statistical quality is sufficient for initialization.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	fillFloat(t, func() float64 { return rand.NormFloat64() })
	return t
}

// Rand creates a float tensor with values drawn from U(0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	fillFloat(t, rand.Float64)
	return t
}

// Arange creates a 1D tensor with values [start, end) in steps of 1.
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	var dummy T
	var n int
	switch any(dummy).(type) {
	case float32:
		n = int(math.Ceil(float64(any(end).(float32) - any(start).(float32))))
	case float64:
		n = int(math.Ceil(any(end).(float64) - any(start).(float64)))
	case int32:
		n = int(any(end).(int32) - any(start).(int32))
	case int64:
		n = int(any(end).(int64) - any(start).(int64))
	default:
		panic("Arange: unsupported element type")
	}
	if n <= 0 {
		panic("Arange: end must be greater than start")
	}

	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = addIndex(start, i)
	}
	return t
}

// Eye creates an n×n identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	one := oneValue[T]()
	for i := 0; i < n; i++ {
		t.Set(one, i, i)
	}
	return t
}

func oneValue[T DType]() T {
	var dummy T
	var one any
	switch any(dummy).(type) {
	case float32:
		one = float32(1)
	case float64:
		one = float64(1)
	case int32:
		one = int32(1)
	case int64:
		one = int64(1)
	case uint8:
		one = uint8(1)
	case bool:
		one = true
	}
	return one.(T)
}

func addIndex[T DType](start T, i int) T {
	switch v := any(start).(type) {
	case float32:
		return any(v + float32(i)).(T)
	case float64:
		return any(v + float64(i)).(T)
	case int32:
		return any(v + int32(i)).(T)
	case int64:
		return any(v + int64(i)).(T)
	default:
		panic("unsupported element type")
	}
}

func fillFloat[T DType, B Backend](t *Tensor[T, B], next func() float64) {
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = float32(next())
		}
	case []float64:
		for i := range data {
			data[i] = next()
		}
	default:
		panic("random initialization requires a float tensor")
	}
}
