// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent optimizers that consume the
// gradient maps produced by a backward pass.
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    tape := backend.NewTape()
//	    loss := lossFn.Forward(model.Forward(input), targets)
//	    grads, _ := autodiff.Backward(loss, backend)
//	    tape.Close()
//	    optimizer.Step(grads)
//	}
package optim

import (
	"github.com/gradtape/gradtape/internal/nn"
	"github.com/gradtape/gradtape/internal/optim"
	"github.com/gradtape/gradtape/internal/tensor"
)

// Optimizer is the common interface of all optimizers.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig configures Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer over params.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}
