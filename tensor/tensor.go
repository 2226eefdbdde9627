// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Type aliases for public API

// Shape describes tensor dimensions. The empty shape is a scalar.
type Shape = tensor.Shape

// Tensor is a dense row-major float64 tensor.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor of the given shape.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// FromSlice creates a tensor that adopts the given data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a tensor of the given shape with every element set to v.
func Full(shape Shape, v float64) (*Tensor, error) {
	return tensor.Full(shape, v)
}

// Scalar creates a rank-0 tensor holding v.
func Scalar(v float64) *Tensor {
	return tensor.Scalar(v)
}
