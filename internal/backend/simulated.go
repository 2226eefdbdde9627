package backend

import (
	"context"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Simulated is the classical estimation path. Value oracles are returned
// verbatim; describable oracles are evaluated exactly as local
// expectation values. This is not a noise simulation.
type Simulated struct{}

// NewSimulated creates the simulated provider.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Name implements Provider.
func (s *Simulated) Name() string {
	return string(Sim)
}

// RunBatch implements Provider. Oracles are invoked directly and in order.
func (s *Simulated) RunBatch(_ context.Context, oracles []oracle.Descriptor, _ RunOptions) ([]*tensor.Tensor, error) {
	results := make([]*tensor.Tensor, len(oracles))
	for i, d := range oracles {
		if err := d.Validate(); err != nil {
			return nil, &EstimationError{Provider: s.Name(), Oracle: i, Reason: err.Error()}
		}
		switch d.Kind() {
		case oracle.KindValue:
			results[i] = d.Tensor().Clone()
		case oracle.KindDescribable:
			exp, err := oracle.Expectation(d)
			if err != nil {
				return nil, &EstimationError{Provider: s.Name(), Oracle: i, Reason: err.Error()}
			}
			results[i] = tensor.Scalar(exp)
		}
	}
	return results, nil
}
