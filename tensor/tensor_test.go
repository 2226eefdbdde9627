// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezynotcheezy/qhaven-qsgd/tensor"
)

func TestPublicAPI(t *testing.T) {
	w, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	g := tensor.Scalar(0.5)
	require.NoError(t, w.AddScaled(g, -2))
	assert.Equal(t, []float64{0, 1, 2}, w.Data())

	ones, err := tensor.Full(tensor.Shape{2, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, ones.NumElements())

	zero, err := tensor.New(tensor.Shape{2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, zero.Data())
}
