// Package backend implements the estimation providers and their selection.
//
// A Provider executes a batch of oracle descriptors and returns one
// estimate per oracle, in submission order. The set of providers is
// closed: Simulated evaluates oracles locally and is the classical
// estimation path; IBM and Braket submit describable oracles to cloud
// devices through the injected Device capability. New backends are new
// variants here, not ad-hoc objects.
package backend

import (
	"context"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// ID identifies a backend.
type ID string

// Known backend identifiers.
const (
	Auto   ID = "auto"
	Sim    ID = "sim"
	IBM    ID = "ibm"
	Braket ID = "braket"
)

// CloudIDs lists the cloud backends in the order auto-resolution tries them.
var CloudIDs = []ID{IBM, Braket}

// KnownIDs lists every accepted backend identifier.
var KnownIDs = []ID{Auto, Sim, IBM, Braket}

// RunOptions carries the per-call estimation settings.
type RunOptions struct {
	// Shots is the number of samples per estimation query.
	Shots int

	// Epsilon is the requested error tolerance.
	Epsilon float64

	// Mode selects the estimation algorithm ("iterative" or "mlae").
	Mode string
}

// Provider executes one batch of estimation jobs.
//
// The result sequence always has the same length and order as the oracle
// sequence. A batch fully succeeds or fails as a unit.
type Provider interface {
	// Name returns the backend identifier this provider serves.
	Name() string

	// RunBatch executes all oracles and returns one estimate per oracle,
	// in submission order.
	RunBatch(ctx context.Context, oracles []oracle.Descriptor, opts RunOptions) ([]*tensor.Tensor, error)
}
