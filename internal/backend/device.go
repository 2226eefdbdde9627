package backend

import "context"

// EstimationJob is one describable oracle prepared for device submission.
type EstimationJob struct {
	Preparation []float64
	Observable  [][]float64
	Shots       int
	Epsilon     float64
	Mode        string
}

// Device is one executable estimation target exposed by a cloud catalog.
// It is the opaque seam to the vendor SDK: this module never constructs
// circuits or speaks a wire protocol itself.
type Device interface {
	// Name returns the device name (e.g. "ibm_brisbane").
	Name() string

	// Simulator reports whether the device is a vendor-side simulator.
	Simulator() bool

	// Operational reports whether the device currently accepts jobs.
	Operational() bool

	// Run submits one estimation job and blocks until completion or ctx
	// expiry, returning the scalar expectation value.
	Run(ctx context.Context, job EstimationJob) (float64, error)
}

// DeviceCatalog lists the devices a cloud account can reach. Listing
// implies authentication: implementations return an AuthenticationError
// when credentials are rejected.
type DeviceCatalog interface {
	Devices(ctx context.Context) ([]Device, error)
}
