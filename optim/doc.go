// Copyright 2025 QHaven QSGD Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for the quantum-assisted
// optimizers.
//
// # Overview
//
// This package contains:
//   - SGDQAE: SGD whose gradient values can come from an
//     amplitude-estimation backend, with one-way classical fallback
//   - Parameter: a trainable value with an externally populated gradient
//   - Optimizer and Recorder interfaces for custom integrations
//
// # Basic Usage
//
//	import (
//	    "github.com/breezynotcheezy/qhaven-qsgd/optim"
//	    "github.com/breezynotcheezy/qhaven-qsgd/oracle"
//	    "github.com/breezynotcheezy/qhaven-qsgd/quantum"
//	)
//
//	func main() {
//	    opt, err := optim.NewSGDQAE(ctx, params, optim.SGDQAEConfig{
//	        LR:            0.01,
//	        Momentum:      0.9,
//	        UseQuantum:    true,
//	        Backend:       quantum.Auto,
//	        OracleBuilder: oracle.Amplitude(),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for range steps {
//	        loss, err := opt.Step(ctx, func(ctx context.Context) (float64, error) {
//	            return forwardBackward(params)
//	        })
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        opt.ZeroGrad()
//	        _ = loss
//	    }
//	}
//
// When no cloud credentials are available the optimizer silently runs
// the classical path; credential discovery and backend selection happen
// once, inside NewSGDQAE.
package optim
