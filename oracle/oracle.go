// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package oracle provides the public API for estimation oracles: the
// values an estimation backend is asked about, either carried verbatim
// or described as a state preparation plus an observable.
package oracle

import (
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Kind tags what a Descriptor carries.
type Kind = oracle.Kind

// Descriptor kinds.
const (
	KindValue       = oracle.KindValue
	KindDescribable = oracle.KindDescribable
)

// Descriptor is one estimation oracle.
type Descriptor = oracle.Descriptor

// Builder constructs one oracle per gradient.
type Builder = oracle.Builder

// Value wraps a tensor to be carried through the pipeline verbatim.
func Value(t *tensor.Tensor) Descriptor {
	return oracle.Value(t)
}

// Describable describes an oracle as a state preparation and an
// observable matrix.
func Describable(preparation []float64, observable [][]float64) Descriptor {
	return oracle.Describable(preparation, observable)
}

// Expectation computes the expectation value of a describable oracle.
func Expectation(d Descriptor) (float64, error) {
	return oracle.Expectation(d)
}

// Built-in oracle builders and loss helpers.

// Amplitude returns the builder that amplitude-encodes each gradient.
func Amplitude() Builder {
	return oracle.Amplitude()
}

// Statistic returns a builder estimating the mean of per-sample losses
// clamped to [lo, hi].
func Statistic(losses []float64, lo, hi float64) Builder {
	return oracle.Statistic(losses, lo, hi)
}

// ClampScale clamps v to [lo, hi] and rescales it to [0, 1].
func ClampScale(v, lo, hi float64) float64 {
	return oracle.ClampScale(v, lo, hi)
}

// LogisticLoss computes per-sample logistic losses for weights w.
func LogisticLoss(X [][]float64, y, w []float64) ([]float64, error) {
	return oracle.LogisticLoss(X, y, w)
}

// MSELoss computes per-sample squared-error losses for weights w.
func MSELoss(X [][]float64, y, w []float64) ([]float64, error) {
	return oracle.MSELoss(X, y, w)
}

// SoftmaxLoss computes per-sample cross-entropy losses from logits.
func SoftmaxLoss(logits [][]float64, y []int) ([]float64, error) {
	return oracle.SoftmaxLoss(logits, y)
}
