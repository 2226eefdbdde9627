// Package param defines trainable parameters and the seam to the external
// autodiff collaborator that populates their gradients.
package param

import (
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Parameter represents one trainable parameter.
//
// The parameter owns its value tensor. The gradient tensor is populated by
// an external autodiff collaborator before each optimizer step and cleared
// by ZeroGrad afterwards.
type Parameter struct {
	name  string
	value *tensor.Tensor
	grad  *tensor.Tensor
}

// New creates a trainable parameter around an initialized value tensor.
func New(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{name: name, value: value}
}

// Name returns the parameter name (e.g. "linear1.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter value tensor. The optimizer updates it in place.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the current gradient, or nil if none has been set.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad installs a gradient computed by the autodiff collaborator.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	p.grad = grad
}

// ZeroGrad clears the gradient so the next backward pass starts fresh.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// GradientSource is the external autodiff collaborator.
//
// Implementations run a backward pass and install gradients on the
// parameters they were constructed with. The optimizer never computes
// gradients itself; it only consumes what a GradientSource produced.
type GradientSource interface {
	// Backward populates Grad on every parameter that participated in the
	// last forward pass.
	Backward() error

	// ZeroGrad clears gradient buffers on all parameters.
	ZeroGrad()
}
