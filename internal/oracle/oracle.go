// Package oracle defines the unit of estimation work submitted to a
// backend provider.
//
// A Descriptor is a tagged payload fixed at construction time: either a
// precomputed Value tensor or a Describable preparation/observable pair
// that a quantum backend can execute. Descriptors never capture closures,
// so batches can cross goroutine and process boundaries safely.
package oracle

import (
	"fmt"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Kind discriminates the descriptor payload.
type Kind int

const (
	// KindValue carries a precomputed tensor returned verbatim.
	KindValue Kind = iota
	// KindDescribable carries a preparation vector and an observable
	// matrix for hardware-backed estimation.
	KindDescribable
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindDescribable:
		return "describable"
	default:
		return "unknown"
	}
}

// Descriptor is one unit of estimation work.
type Descriptor struct {
	kind        Kind
	value       *tensor.Tensor
	preparation []float64
	observable  [][]float64
}

// Value creates a descriptor carrying a precomputed tensor.
func Value(t *tensor.Tensor) Descriptor {
	return Descriptor{kind: KindValue, value: t}
}

// Describable creates a descriptor carrying a preparation state vector and
// an observable matrix.
func Describable(preparation []float64, observable [][]float64) Descriptor {
	return Descriptor{kind: KindDescribable, preparation: preparation, observable: observable}
}

// Kind returns the payload tag.
func (d Descriptor) Kind() Kind {
	return d.kind
}

// Tensor returns the precomputed value of a KindValue descriptor.
func (d Descriptor) Tensor() *tensor.Tensor {
	return d.value
}

// Preparation returns the preparation state vector of a Describable.
func (d Descriptor) Preparation() []float64 {
	return d.preparation
}

// Observable returns the observable matrix of a Describable.
func (d Descriptor) Observable() [][]float64 {
	return d.observable
}

// Validate checks structural invariants of the descriptor.
//
// For a Describable, the observable must be a square matrix whose
// dimension matches the preparation length.
func (d Descriptor) Validate() error {
	switch d.kind {
	case KindValue:
		if d.value == nil {
			return fmt.Errorf("value descriptor has no tensor")
		}
		return nil
	case KindDescribable:
		n := len(d.preparation)
		if n == 0 {
			return fmt.Errorf("describable has empty preparation")
		}
		if len(d.observable) != n {
			return fmt.Errorf("observable has %d rows, preparation has dimension %d",
				len(d.observable), n)
		}
		for i, row := range d.observable {
			if len(row) != n {
				return fmt.Errorf("observable row %d has %d columns, want %d", i, len(row), n)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown descriptor kind %d", d.kind)
	}
}

// Expectation computes the expectation value of a Describable: the
// quadratic form of the observable over the normalized preparation state.
func Expectation(d Descriptor) (float64, error) {
	if d.kind != KindDescribable {
		return 0, fmt.Errorf("expectation requires a describable descriptor, got %s", d.kind)
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}

	var norm float64
	for _, a := range d.preparation {
		norm += a * a
	}
	if norm == 0 {
		return 0, fmt.Errorf("preparation state has zero norm")
	}

	var exp float64
	for i, row := range d.observable {
		for j, o := range row {
			exp += d.preparation[i] * o * d.preparation[j]
		}
	}
	return exp / norm, nil
}

// Builder constructs one Describable per gradient. The index identifies
// the gradient's position within the batch.
type Builder func(grad *tensor.Tensor, index int) (Descriptor, error)
