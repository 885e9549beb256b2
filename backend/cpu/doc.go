// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// The backend implements every tensor.Backend operation in Go with no
// CGO:
//   - elementwise arithmetic with NumPy-compatible broadcasting
//   - 2D matrix multiplication (float32, float64)
//   - unary math, reductions, reshapes, transposes, dtype casts
//   - an in-place fast path for uniquely owned buffers
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
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//	}
//
// For gradient computation, wrap the backend with autodiff.New; the
// decorator delegates all arithmetic here while recording operations.
package cpu
