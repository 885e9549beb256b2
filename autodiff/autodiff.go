// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation
// through gradient tapes.
//
// The package wraps any tensor backend in a recording decorator. While
// a tape is attached, every operation that flows through the backend is
// recorded; the tape then answers gradient queries by walking the
// record backward.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//
//	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{}, backend)
//
//	tape := backend.NewTape()
//	defer tape.Close()
//	tape.Watch(x.Raw())
//
//	y := x.Mul(x) // y = x²
//
//	grads, _ := tape.Gradient(y.Raw(), x.Raw())
//	// grads[0] holds dy/dx = 6
//
// Only watched tensors receive gradients: Watch marks one explicitly,
// and reading a trainable Variable marks it automatically. Asking for
// the gradient of anything else returns nil, not an error.
//
// A tape answers one Gradient call and then releases its record;
// construct it with Persistent() to query repeatedly. Nesting tapes
// records the inner backward pass on the outer tape, which yields
// higher-order derivatives.
package autodiff

import (
	"github.com/gradtape/gradtape/internal/autodiff"
	"github.com/gradtape/gradtape/internal/tensor"
)

// Backend is the recording decorator around a compute backend.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// New wraps backend in a recording decorator.
//
//	backend := autodiff.New(cpu.New())
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations and answers gradient queries.
// Create one with Backend.NewTape.
type GradientTape = autodiff.GradientTape

// TapeOption configures a tape at creation.
type TapeOption = autodiff.TapeOption

// Persistent makes a tape answer any number of Gradient calls instead
// of releasing its record after the first.
func Persistent() TapeOption {
	return autodiff.Persistent()
}

// Variable is a mutable named tensor. Trainable variables are watched
// automatically when read under a recording tape.
type Variable[T tensor.DType, B tensor.Backend] = autodiff.Variable[T, B]

// NewVariable creates a trainable variable.
func NewVariable[T tensor.DType, B tensor.Backend](name string, value *tensor.Tensor[T, B]) *Variable[T, B] {
	return autodiff.NewVariable(name, value)
}

// NewConstantVariable creates a non-trainable variable; reads are not
// auto-watched.
func NewConstantVariable[T tensor.DType, B tensor.Backend](name string, value *tensor.Tensor[T, B]) *Variable[T, B] {
	return autodiff.NewConstantVariable(name, value)
}

// BackwardCapable is satisfied by Backend; it exposes the innermost
// tape to generic training code.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t with respect to everything the
// innermost tape recorded, ignoring the watch filter. It is the
// training-loop entry point.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(t, backend)
}
