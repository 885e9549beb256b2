package nn

import (
	"github.com/gradtape/gradtape/internal/autodiff"
	"github.com/gradtape/gradtape/internal/tensor"
)

// Parameter is a trainable tensor of a module, backed by an autodiff
// variable. Reading it through Tensor while a tape records marks it as
// watched, so layers never call Watch themselves.
type Parameter[B tensor.Backend] struct {
	variable *autodiff.Variable[float32, B]
}

// NewParameter creates a trainable parameter holding t.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{variable: autodiff.NewVariable(name, t)}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter[B]) Name() string { return p.variable.Name() }

// Tensor returns the parameter value, watching it on recording tapes.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.variable.Value()
}

// Raw returns the underlying raw tensor. This is the key optimizers use
// to find the parameter's gradient in a backward-pass gradient map.
func (p *Parameter[B]) Raw() *tensor.RawTensor { return p.variable.Raw() }

// Shape returns the parameter shape.
func (p *Parameter[B]) Shape() tensor.Shape { return p.variable.Shape() }

// AssignSub subtracts t from the parameter in place, off the tape.
func (p *Parameter[B]) AssignSub(t *tensor.Tensor[float32, B]) error {
	return p.variable.AssignSub(t)
}

// Assign replaces the parameter data with t's data, off the tape.
func (p *Parameter[B]) Assign(t *tensor.Tensor[float32, B]) error {
	return p.variable.Assign(t)
}
