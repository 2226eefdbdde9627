// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"context"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/optim"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/param"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Closure recomputes the loss and populates gradients for one step.
type Closure = optim.Closure

// Recorder receives the training trace.
type Recorder = optim.Recorder

// StepRecord summarizes one completed optimization step.
type StepRecord = optim.StepRecord

// Parameters

// Parameter represents one trainable parameter.
type Parameter = param.Parameter

// GradientSource is the external collaborator that populates gradients.
type GradientSource = param.GradientSource

// NewParameter creates a trainable parameter around a value tensor.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return param.New(name, value)
}

// SGDQAE (Stochastic Gradient Descent with Quantum Amplitude Estimation)

// SGDQAE represents the quantum-assisted SGD optimizer.
type SGDQAE = optim.SGDQAE

// SGDQAEConfig contains configuration for the SGDQAE optimizer.
type SGDQAEConfig = optim.SGDQAEConfig

// State reports which estimation path the optimizer is on.
type State = optim.State

// Optimizer states.
const (
	StateQuantumActive     = optim.StateQuantumActive
	StateClassicalFallback = optim.StateClassicalFallback
)

// DefaultLR is the learning rate used when the config leaves it zero.
const DefaultLR = optim.DefaultLR

// NewSGDQAE creates a new SGDQAE optimizer and resolves its backend.
//
// Example:
//
//	opt, err := optim.NewSGDQAE(ctx, params, optim.SGDQAEConfig{
//	    LR:         0.01,
//	    Momentum:   0.9,
//	    UseQuantum: true,
//	})
func NewSGDQAE(ctx context.Context, params []*Parameter, config SGDQAEConfig) (*SGDQAE, error) {
	return optim.NewSGDQAE(ctx, params, config)
}
