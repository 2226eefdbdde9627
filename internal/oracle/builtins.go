package oracle

import (
	"fmt"
	"math"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Built-in oracle builders. Each maps a loss-like statistic into [0, 1]
// and amplitude-encodes it as a describable preparation with a diagonal
// observable, so the estimated expectation reflects the statistic's
// amplitude-weighted mean.

// ClampScale maps v into [0, 1] relative to [lo, hi], saturating outside.
func ClampScale(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	s := (v - lo) / (hi - lo)
	return math.Min(1, math.Max(0, s))
}

// encodeStatistic amplitude-encodes a [0,1] statistic vector: the
// preparation amplitudes are the square roots of the statistic and the
// observable is its diagonal matrix.
func encodeStatistic(stat []float64) Descriptor {
	n := len(stat)
	prep := make([]float64, n)
	obs := make([][]float64, n)
	for i, p := range stat {
		prep[i] = math.Sqrt(p)
		obs[i] = make([]float64, n)
		obs[i][i] = p
	}
	return Describable(prep, obs)
}

// Amplitude returns the default builder: it encodes the gradient itself,
// using normalized absolute values as amplitudes and the gradient values
// as the diagonal observable.
func Amplitude() Builder {
	return func(grad *tensor.Tensor, _ int) (Descriptor, error) {
		data := grad.Data()
		if len(data) == 0 {
			return Descriptor{}, fmt.Errorf("cannot encode empty gradient")
		}
		prep := make([]float64, len(data))
		obs := make([][]float64, len(data))
		for i, g := range data {
			prep[i] = math.Abs(g)
			obs[i] = make([]float64, len(data))
			obs[i][i] = g
		}
		if grad.Norm() == 0 {
			// A zero gradient still needs a valid state; use the uniform one.
			for i := range prep {
				prep[i] = 1
			}
		}
		return Describable(prep, obs), nil
	}
}

// LogisticLoss computes the per-sample logistic loss of a linear model
// with weights w over the batch (X, y). Labels must be 0 or 1.
func LogisticLoss(X [][]float64, y, w []float64) ([]float64, error) {
	if len(y) != len(X) {
		return nil, fmt.Errorf("batch has %d samples, %d labels", len(X), len(y))
	}
	losses := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(w) {
			return nil, fmt.Errorf("sample %d has %d features, weights have %d", i, len(row), len(w))
		}
		var logit float64
		for j, x := range row {
			logit += x * w[j]
		}
		pred := 1 / (1 + math.Exp(-logit))
		const eps = 1e-8
		losses[i] = -(y[i]*math.Log(pred+eps) + (1-y[i])*math.Log(1-pred+eps))
	}
	return losses, nil
}

// MSELoss computes per-sample squared error of a linear model with
// weights w over the batch (X, y).
func MSELoss(X [][]float64, y, w []float64) ([]float64, error) {
	if len(y) != len(X) {
		return nil, fmt.Errorf("batch has %d samples, %d labels", len(X), len(y))
	}
	losses := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(w) {
			return nil, fmt.Errorf("sample %d has %d features, weights have %d", i, len(row), len(w))
		}
		var pred float64
		for j, x := range row {
			pred += x * w[j]
		}
		d := pred - y[i]
		losses[i] = d * d
	}
	return losses, nil
}

// SoftmaxLoss computes per-sample cross-entropy from precomputed logits
// and integer class labels.
func SoftmaxLoss(logits [][]float64, y []int) ([]float64, error) {
	if len(y) != len(logits) {
		return nil, fmt.Errorf("batch has %d samples, %d labels", len(logits), len(y))
	}
	losses := make([]float64, len(logits))
	for i, row := range logits {
		if y[i] < 0 || y[i] >= len(row) {
			return nil, fmt.Errorf("sample %d label %d out of range [0,%d)", i, y[i], len(row))
		}
		maxv := math.Inf(-1)
		for _, v := range row {
			maxv = math.Max(maxv, v)
		}
		var sum float64
		for _, v := range row {
			sum += math.Exp(v - maxv)
		}
		losses[i] = -(row[y[i]] - maxv - math.Log(sum))
	}
	return losses, nil
}

// Statistic returns a builder over a fixed loss statistic, clamp-scaled
// into [0,1] by the bounds. The builder ignores the gradient: the encoded
// statistic describes the batch, not one parameter.
func Statistic(losses []float64, lo, hi float64) Builder {
	scaled := make([]float64, len(losses))
	for i, v := range losses {
		scaled[i] = ClampScale(v, lo, hi)
	}
	return func(_ *tensor.Tensor, _ int) (Descriptor, error) {
		if len(scaled) == 0 {
			return Descriptor{}, fmt.Errorf("empty loss statistic")
		}
		return encodeStatistic(scaled), nil
	}
}
