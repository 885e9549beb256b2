package autodiff

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gradtape/gradtape/internal/tensor"
)

// variableWatcher is implemented by Backend. Variables use it to mark
// their value as tracked whenever it is read under a recording tape.
type variableWatcher interface {
	watchVariable(raw *tensor.RawTensor)
}

// Variable is a mutable, named wrapper around a tensor.
//
// Reading a trainable variable with Value automatically watches it on
// every recording tape, so model parameters never need explicit Watch
// calls. Assignments update the stored data in place without recording;
// parameter updates must not become part of the computation graph.
type Variable[T tensor.DType, B tensor.Backend] struct {
	name      string
	value     *tensor.Tensor[T, B]
	trainable bool
}

// NewVariable creates a trainable variable holding value.
func NewVariable[T tensor.DType, B tensor.Backend](name string, value *tensor.Tensor[T, B]) *Variable[T, B] {
	return &Variable[T, B]{name: name, value: value, trainable: true}
}

// NewConstantVariable creates a non-trainable variable: reads are not
// auto-watched, so gradients for it come back nil unless watched by hand.
func NewConstantVariable[T tensor.DType, B tensor.Backend](name string, value *tensor.Tensor[T, B]) *Variable[T, B] {
	return &Variable[T, B]{name: name, value: value, trainable: false}
}

// Name returns the variable name.
func (v *Variable[T, B]) Name() string { return v.name }

// Trainable reports whether reads are auto-watched.
func (v *Variable[T, B]) Trainable() bool { return v.trainable }

// Value returns the variable's current tensor. For trainable variables
// the read is watched on all recording tapes of the backend.
func (v *Variable[T, B]) Value() *tensor.Tensor[T, B] {
	if v.trainable {
		if w, ok := any(v.value.Backend()).(variableWatcher); ok {
			w.watchVariable(v.value.Raw())
		}
	}
	return v.value
}

// Raw returns the underlying raw tensor, the identity used in gradient
// maps and Gradient source lists.
func (v *Variable[T, B]) Raw() *tensor.RawTensor { return v.value.Raw() }

// Shape returns the variable's shape.
func (v *Variable[T, B]) Shape() tensor.Shape { return v.value.Shape() }

// Assign overwrites the variable's data with t's data. Shapes must match.
// The update is not recorded on any tape.
func (v *Variable[T, B]) Assign(t *tensor.Tensor[T, B]) error {
	if !v.value.Shape().Equal(t.Shape()) {
		return errors.Errorf("assign to %q: shape mismatch %v vs %v",
			v.name, v.value.Shape(), t.Shape())
	}
	copy(v.value.Data(), t.Data())
	return nil
}

// AssignSub subtracts t from the variable in place, unrecorded.
// This is the optimizer update primitive.
func (v *Variable[T, B]) AssignSub(t *tensor.Tensor[T, B]) error {
	if !v.value.Shape().Equal(t.Shape()) {
		return errors.Errorf("assign_sub to %q: shape mismatch %v vs %v",
			v.name, v.value.Shape(), t.Shape())
	}
	dst, src := v.value.Data(), t.Data()
	switch d := any(dst).(type) {
	case []float32:
		s := any(src).([]float32)
		for i := range d {
			d[i] -= s[i]
		}
	case []float64:
		s := any(src).([]float64)
		for i := range d {
			d[i] -= s[i]
		}
	default:
		return errors.Errorf("assign_sub to %q: unsupported element type", v.name)
	}
	return nil
}

// String returns a short description of the variable.
func (v *Variable[T, B]) String() string {
	return fmt.Sprintf("Variable(%q, %v, trainable=%t)", v.name, v.Shape(), v.trainable)
}
