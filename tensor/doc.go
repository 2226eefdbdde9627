// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense float64 tensors
// the optimizer operates on.
//
// The package defines:
//   - Tensor: a dense row-major float64 tensor with in-place updates
//   - Shape: dimension sizes, where the empty shape is a scalar
//
// Example:
//
//	w, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})
//	g := tensor.Scalar(0.5)
//	_ = w.AddScaled(g, -0.01) // w -= 0.01 * g, broadcast over w
package tensor
