// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides trainable network building blocks: parameters,
// layers, activations, containers, and loss functions.
//
// Parameters are backed by autodiff variables, so using a layer under a
// recording tape watches its parameters automatically:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewSequential[tensor.Backend](
//	    nn.NewLinear[tensor.Backend](4, 16, backend),
//	    nn.NewTanh[tensor.Backend](),
//	    nn.NewLinear[tensor.Backend](16, 1, backend),
//	)
//
//	tape := backend.NewTape()
//	loss := nn.NewMSELoss[tensor.Backend]().Forward(model.Forward(x), y)
//	grads, _ := autodiff.Backward(loss, backend)
//	tape.Close()
package nn

import (
	"github.com/gradtape/gradtape/internal/nn"
	"github.com/gradtape/gradtape/internal/tensor"
)

// Module is the common interface of all network components.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a trainable tensor of a module.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a trainable parameter with the given name.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected layer: y = x @ Wᵀ + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a Linear layer with Xavier-initialized weights and
// zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Activations

// ReLU applies max(0, x) elementwise.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] { return nn.NewReLU[B]() }

// Tanh applies the hyperbolic tangent elementwise.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] { return nn.NewTanh[B]() }

// Sigmoid applies 1/(1+e^-x) elementwise.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return nn.NewSigmoid[B]() }

// Containers

// Sequential chains modules, feeding each output into the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Losses

// MSELoss computes mean((predictions - targets)²).
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates an MSE loss function.
func NewMSELoss[B tensor.Backend]() *MSELoss[B] { return nn.NewMSELoss[B]() }

// Initialization

// Xavier initializes weights from the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros creates a zero-filled float32 tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones creates a float32 tensor of ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}

// Randn creates a float32 tensor drawn from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Randn(shape, backend)
}
