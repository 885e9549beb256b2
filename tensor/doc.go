// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for GradTape.
//
// # Overview
//
// Tensors are the fundamental data structure. This package provides:
//   - generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - copy-on-write buffers with zero-copy data access
//   - a Backend interface that decorators (autodiff) can wrap
//
// # Basic Usage
//
//	import (
//	    "github.com/gradtape/gradtape/backend/cpu"
//	    "github.com/gradtape/gradtape/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    z := x.Add(y)
//	    w := x.MatMul(y.T())
//	}
//
// # Supported Data Types
//
// The DType constraint admits:
//   - float32, float64 (floating point; the differentiable types)
//   - int32, int64 (signed integers)
//   - uint8 (images, masks)
//   - bool (boolean masks)
//
// Float16 exists as a storage DataType reachable through Cast; it is
// not a DType, so computation happens in float32/float64 and converts
// at the edges.
//
// # Broadcasting
//
// Binary operations broadcast under NumPy rules: trailing dimensions
// must match or be 1, and missing leading dimensions are treated as 1.
// Gradient flow through broadcast operations sums over the broadcast
// dimensions automatically.
package tensor
