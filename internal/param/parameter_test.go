package param

import (
	"testing"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

func TestParameter_GradLifecycle(t *testing.T) {
	v, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2})
	p := New("w", v)

	if p.Grad() != nil {
		t.Error("new parameter should have nil gradient")
	}

	g, _ := tensor.FromSlice([]float64{0.1, 0.2}, tensor.Shape{2})
	p.SetGrad(g)
	if p.Grad() != g {
		t.Error("SetGrad should install the gradient")
	}

	p.ZeroGrad()
	if p.Grad() != nil {
		t.Error("ZeroGrad should clear the gradient")
	}
}

func TestParameter_Name(t *testing.T) {
	v, _ := tensor.New(tensor.Shape{1})
	if got := New("bias", v).Name(); got != "bias" {
		t.Errorf("Name = %q, want %q", got, "bias")
	}
}
