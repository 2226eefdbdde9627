// Package tensor implements the dense float64 tensor used for parameter
// values, gradients, and momentum buffers.
//
// The gradient-estimation pipeline only needs element-wise arithmetic over
// flat buffers, so tensors here are always contiguous row-major float64
// storage. Rank-0 (scalar) tensors broadcast against any shape in the
// binary operations; any other shape mismatch is an error.
package tensor

import (
	"fmt"
	"math"
)

// Tensor is a dense, row-major float64 tensor.
type Tensor struct {
	shape Shape
	data  []float64
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}, nil
}

// FromSlice creates a tensor from existing data. The data is copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &Tensor{shape: shape.Clone(), data: d}, nil
}

// Full creates a tensor with every element set to v.
func Full(shape Shape, v float64) (*Tensor, error) {
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		t.data[i] = v
	}
	return t, nil
}

// Scalar creates a rank-0 tensor holding a single value.
func Scalar(v float64) *Tensor {
	return &Tensor{shape: Shape{}, data: []float64{v}}
}

// Shape returns the tensor's shape. The returned slice must not be mutated.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying storage. Mutations are visible to the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// NumElements returns the number of stored elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// IsScalar reports whether the tensor is rank 0.
func (t *Tensor) IsScalar() bool {
	return t.shape.IsScalar()
}

// Item returns the single value of a scalar tensor.
func (t *Tensor) Item() (float64, error) {
	if len(t.data) != 1 {
		return 0, fmt.Errorf("Item on tensor with %d elements", len(t.data))
	}
	return t.data[0], nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	d := make([]float64, len(t.data))
	copy(d, t.data)
	return &Tensor{shape: t.shape.Clone(), data: d}
}

// at resolves the broadcast value of o for flat index i.
func broadcastAt(o *Tensor, i int) float64 {
	if o.IsScalar() {
		return o.data[0]
	}
	return o.data[i]
}

// checkCompatible verifies that o can combine with t: same shape, or o scalar.
func (t *Tensor) checkCompatible(o *Tensor) error {
	if o.IsScalar() || t.shape.Equal(o.Shape()) {
		return nil
	}
	return fmt.Errorf("shape mismatch: %v vs %v", t.shape, o.Shape())
}

// AddScaled performs t += alpha * o in place. o may be a scalar tensor,
// in which case it broadcasts over t.
func (t *Tensor) AddScaled(o *Tensor, alpha float64) error {
	if err := t.checkCompatible(o); err != nil {
		return err
	}
	for i := range t.data {
		t.data[i] += alpha * broadcastAt(o, i)
	}
	return nil
}

// Add performs t += o in place.
func (t *Tensor) Add(o *Tensor) error {
	return t.AddScaled(o, 1)
}

// Scale multiplies every element by alpha in place.
func (t *Tensor) Scale(alpha float64) {
	for i := range t.data {
		t.data[i] *= alpha
	}
}

// MulAdd performs t = momentum*t + o in place. Used for momentum buffers.
func (t *Tensor) MulAdd(momentum float64, o *Tensor) error {
	if err := t.checkCompatible(o); err != nil {
		return err
	}
	for i := range t.data {
		t.data[i] = momentum*t.data[i] + broadcastAt(o, i)
	}
	return nil
}

// Norm returns the L2 norm.
func (t *Tensor) Norm() float64 {
	var sum float64
	for _, v := range t.data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Equal reports exact element-wise equality, including shape.
func (t *Tensor) Equal(o *Tensor) bool {
	if !t.shape.Equal(o.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != o.data[i] {
			return false
		}
	}
	return true
}
