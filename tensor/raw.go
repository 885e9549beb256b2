// Copyright 2026 The GradTape Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/gradtape/gradtape/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - shape and type information via Shape(), DType(), Device()
//   - type-safe data access via AsFloat32(), AsFloat64(), etc.
//   - copy-on-write buffer sharing via Clone()
//
// Its pointer identity is what gradient tapes key on: watching,
// gradient lookup, and accumulation all use *RawTensor as the map key.
// Most users should work with the high-level Tensor[T, B] type.
type RawTensor = tensor.RawTensor
