// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quantum provides the public API for estimation backends, the
// gradient estimator and the result cache.
//
// Backend ids:
//   - Auto: pick the first cloud backend with a full credential set,
//     otherwise the local simulated path
//   - Sim: always the local simulated path
//   - IBM, Braket: the named cloud backend, degrading to the simulated
//     path when it cannot be constructed
package quantum

import (
	"context"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/backend"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/cache"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/estimator"
)

// Backend selection

// ID names an estimation backend.
type ID = backend.ID

// Known backend ids.
const (
	Auto   = backend.Auto
	Sim    = backend.Sim
	IBM    = backend.IBM
	Braket = backend.Braket
)

// Provider runs batches of estimation oracles.
type Provider = backend.Provider

// Device is one executable estimation target exposed by a cloud catalog.
type Device = backend.Device

// DeviceCatalog lists the devices a cloud account can reach.
type DeviceCatalog = backend.DeviceCatalog

// EstimationJob is one describable oracle prepared for device submission.
type EstimationJob = backend.EstimationJob

// RunOptions carries the estimation knobs of one batch.
type RunOptions = backend.RunOptions

// SelectorConfig configures backend resolution.
type SelectorConfig = backend.SelectorConfig

// Resolve selects and constructs the provider for a backend id.
func Resolve(ctx context.Context, id ID, cfg SelectorConfig) (Provider, error) {
	return backend.Resolve(ctx, id, cfg)
}

// Errors

// ConfigurationError reports an invalid backend configuration. It is
// never retried.
type ConfigurationError = backend.ConfigurationError

// AuthenticationError reports missing or rejected credentials. It is
// never retried.
type AuthenticationError = backend.AuthenticationError

// BackendUnavailableError reports a backend with no usable device.
type BackendUnavailableError = backend.BackendUnavailableError

// EstimationError reports a failed estimation for one oracle.
type EstimationError = backend.EstimationError

// TransientError wraps failures worth retrying.
type TransientError = backend.TransientError

// Retryable reports whether an estimation failure is worth retrying.
func Retryable(err error) bool {
	return backend.Retryable(err)
}

// Estimator

// Estimator produces gradient estimates and per-call metadata.
type Estimator = estimator.Estimator

// Options configures an Estimator.
type Options = estimator.Options

// Request is one estimate call.
type Request = estimator.Request

// CallMetadata describes how one call's estimates were produced.
type CallMetadata = estimator.CallMetadata

// Mode tags how a call's estimates were produced.
type Mode = estimator.Mode

// Estimation modes.
const (
	ModeClassicalMC       = estimator.ModeClassicalMC
	ModeQuantum           = estimator.ModeQuantum
	ModeClassicalFallback = estimator.ModeClassicalFallback
	ModeErrorFallback     = estimator.ModeErrorFallback
)

// NewEstimator resolves the backend and builds an estimator.
func NewEstimator(ctx context.Context, opts Options) (*Estimator, error) {
	return estimator.New(ctx, opts)
}

// Result cache

// Cache is the content-addressed estimation result cache.
type Cache = cache.Cache

// NewCache opens the cache rooted at dir, creating it as needed.
func NewCache(dir string) (*Cache, error) {
	return cache.New(dir, nil)
}

// DefaultCacheDir returns the default cache directory.
func DefaultCacheDir() string {
	return cache.DefaultDir()
}
