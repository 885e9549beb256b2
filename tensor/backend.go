// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/gradtape/gradtape/internal/tensor"

// Backend is the interface every compute backend implements. Tensor
// methods dispatch to it for the actual work.
//
// Implementations:
//   - backend/cpu: pure Go CPU kernels
//   - autodiff: decorator that records operations on gradient tapes
//     while delegating computation to a wrapped backend
type Backend = tensor.Backend
