package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Device identifies where tensor data lives. Only CPU is supported;
// GPU backends are out of scope for this library.
type Device int

// Supported devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	if d == CPU {
		return "CPU"
	}
	return "Unknown"
}

// buffer is a reference-counted byte slice shared between tensors.
// Sharing enables cheap clones; a refcount of 1 permits inplace compute.
type buffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // guards deallocation
}

func newBuffer(size int) *buffer {
	b := &buffer{data: make([]byte, size)}
	b.refCount.Store(1)
	return b
}

func (b *buffer) addRef() {
	b.refCount.Add(1)
}

func (b *buffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.data = nil
	}
}

func (b *buffer) isUnique() bool {
	return b.refCount.Load() == 1
}

// RawTensor is the untyped tensor representation shared by all backends.
// Its identity (pointer value) is what the gradient tape keys on.
type RawTensor struct {
	buf    *buffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
	offset int
}

// NewRaw allocates a zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}

	return &RawTensor{
		buf:    newBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
		offset: 0,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape { return r.shape }

// Strides returns the tensor's row-major strides.
func (r *RawTensor) Strides() []int { return r.stride }

// DType returns the tensor's storage type.
func (r *RawTensor) DType() DataType { return r.dtype }

// Device returns the tensor's device.
func (r *RawTensor) Device() Device { return r.device }

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// ByteSize returns the memory footprint in bytes.
func (r *RawTensor) ByteSize() int { return r.NumElements() * r.dtype.Size() }

// Data returns the raw bytes. Direct access to the underlying memory.
func (r *RawTensor) Data() []byte {
	return r.buf.data[r.offset:]
}

func (r *RawTensor) checkDType(want DataType) {
	if r.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, want))
	}
}

// AsFloat32 reinterprets the data as []float32. Panics on dtype mismatch.
func (r *RawTensor) AsFloat32() []float32 {
	r.checkDType(Float32)
	data := r.buf.data[r.offset:]
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 reinterprets the data as []float64. Panics on dtype mismatch.
func (r *RawTensor) AsFloat64() []float64 {
	r.checkDType(Float64)
	data := r.buf.data[r.offset:]
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat16 reinterprets the data as []float16.Float16 (IEEE 754 binary16).
// Panics on dtype mismatch.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	r.checkDType(Float16)
	data := r.buf.data[r.offset:]
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 reinterprets the data as []int32. Panics on dtype mismatch.
func (r *RawTensor) AsInt32() []int32 {
	r.checkDType(Int32)
	data := r.buf.data[r.offset:]
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 reinterprets the data as []int64. Panics on dtype mismatch.
func (r *RawTensor) AsInt64() []int64 {
	r.checkDType(Int64)
	data := r.buf.data[r.offset:]
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsUint8 reinterprets the data as []uint8. Panics on dtype mismatch.
func (r *RawTensor) AsUint8() []uint8 {
	r.checkDType(Uint8)
	return r.buf.data[r.offset:]
}

// AsBool reinterprets the data as []bool. Panics on dtype mismatch.
func (r *RawTensor) AsBool() []bool {
	r.checkDType(Bool)
	data := r.buf.data[r.offset:]
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Clone returns a shallow copy sharing the same buffer (refcounted).
// The data is copied only if a writer later needs a unique buffer.
func (r *RawTensor) Clone() *RawTensor {
	r.buf.addRef()
	return &RawTensor{
		buf:    r.buf,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset,
	}
}

// Release decrements the buffer refcount, freeing memory at zero.
func (r *RawTensor) Release() {
	r.buf.release()
}

// IsUnique reports whether this tensor is the only reference to its buffer.
// Backends use this to decide whether inplace compute is safe.
func (r *RawTensor) IsUnique() bool {
	return r.buf.isUnique()
}

// ForceNonUnique pins the buffer so backends cannot modify it in place.
// The gradient tape uses this to keep recorded inputs intact; an inplace
// fast path overwriting an operand would corrupt later backward passes.
// The returned func must be called (defer it) to unpin.
func (r *RawTensor) ForceNonUnique() func() {
	r.buf.addRef()
	return func() {
		r.buf.release()
	}
}

// String returns a short description of the raw tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor[%s]%v on %s", r.dtype, r.shape, r.device)
}
