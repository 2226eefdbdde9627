// Package optim implements the quantum-assisted optimization algorithms.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGDQAE: Stochastic Gradient Descent with amplitude-estimated gradients
//
// Design inspired by PyTorch's torch.optim but adapted for Go with
// explicit contexts and error returns.
//
// Example usage:
//
//	opt, err := optim.NewSGDQAE(ctx, model.Parameters(), optim.SGDQAEConfig{
//	    LR:         0.01,
//	    Momentum:   0.9,
//	    UseQuantum: true,
//	    Backend:    backend.Auto,
//	})
//
//	for epoch := range epochs {
//	    loss, err := opt.Step(ctx, func(ctx context.Context) (float64, error) {
//	        return trainStep(model, batch)
//	    })
//	    opt.ZeroGrad()
//	}
package optim

import (
	"context"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/estimator"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update parameters in-place based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Step applies one gradient update to all parameters. The closure,
	// when non-nil, recomputes the loss and repopulates gradients before
	// the update.
	Step(ctx context.Context, closure Closure) (float64, error)

	// ZeroGrad clears all parameter gradients. Call it before each
	// backward pass to prevent gradient accumulation.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Closure recomputes the loss and populates parameter gradients for one
// step. It mirrors the closure convention of torch.optim.
type Closure func(ctx context.Context) (float64, error)

// StepRecord summarizes one completed optimization step.
type StepRecord struct {
	Step     int                    `json:"step"`
	Loss     float64                `json:"loss"`
	Params   int                    `json:"params"`
	Estimate estimator.CallMetadata `json:"estimate"`
}

// Recorder receives the training trace. Implementations must be safe for
// use from a single optimizer goroutine; they are never called
// concurrently.
type Recorder interface {
	// RecordStep is called once per completed step.
	RecordStep(rec StepRecord)

	// RecordEstimate is called after every estimator call with its
	// metadata, including cached and failed calls.
	RecordEstimate(step int, meta estimator.CallMetadata)

	// RecordFallback is called exactly once, when the optimizer
	// permanently switches to the classical path.
	RecordFallback(step int, reason string)
}

// nopRecorder discards the trace.
type nopRecorder struct{}

func (nopRecorder) RecordStep(StepRecord)                      {}
func (nopRecorder) RecordEstimate(int, estimator.CallMetadata) {}
func (nopRecorder) RecordFallback(int, string)                 {}
