package optim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/backend"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/estimator"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/param"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/sched"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// State reports which estimation path the optimizer is on.
type State string

// Optimizer states. The transition QuantumActive -> ClassicalFallback is
// one-way: once a quantum estimate fails, the optimizer never tries the
// quantum path again for its lifetime.
const (
	StateQuantumActive     State = "quantum-active"
	StateClassicalFallback State = "classical-fallback"
)

// SGDQAE implements Stochastic Gradient Descent where gradient values may
// be replaced by estimates from an amplitude-estimation backend.
//
// Update rule (per parameter, g is the estimated gradient):
//
//	g = g + weight_decay * param
//	buf = momentum * buf + g
//	g = g + momentum * buf        (nesterov)
//	g = buf                       (plain momentum)
//	param = param - lr * g
//
// When the quantum path is enabled, gradients are submitted to the
// resolved backend as estimation oracles and the returned expectation
// values are used in place of the raw gradients. Any failure on that path
// permanently switches the optimizer to the classical path; the step that
// observed the failure completes with the raw gradients and no error.
type SGDQAE struct {
	params   []*param.Parameter
	cfg      SGDQAEConfig
	est      *estimator.Estimator
	buffers  map[*param.Parameter]*tensor.Tensor
	state    State
	fellBack bool
	step     int
	rec      Recorder
	logger   *slog.Logger
}

// SGDQAEConfig holds configuration for the SGDQAE optimizer.
type SGDQAEConfig struct {
	LR          float64 // Learning rate (default: 1e-3)
	Momentum    float64 // Momentum factor (default: 0.0, range: [0, 1))
	WeightDecay float64 // L2 penalty added to gradients (default: 0.0)
	Nesterov    bool    // Nesterov momentum, requires Momentum > 0

	// UseQuantum enables the amplitude-estimation path. When false the
	// optimizer is plain SGD and no backend is contacted.
	UseQuantum bool

	// OracleBuilder maps each gradient to an estimation oracle. Nil
	// keeps the estimator on the classical path even when UseQuantum is
	// set.
	OracleBuilder oracle.Builder

	// Backend, StrictLocal, Precision, Shots, Mode, Timeout, MaxRetries,
	// MaxParallel, Backoff, CacheDir, Env and Catalogs are passed through
	// to the estimator. See estimator.Options.
	Backend     backend.ID
	StrictLocal bool
	Precision   float64
	Shots       int
	Mode        string
	Timeout     time.Duration
	MaxRetries  int
	MaxParallel int
	Backoff     sched.Backoff
	CacheDir    string
	Env         *config.Resolver
	Catalogs    map[backend.ID]backend.DeviceCatalog

	// Recorder receives the training trace. Nil discards it.
	Recorder Recorder

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultLR is the learning rate used when the config leaves it zero.
const DefaultLR = 1e-3

// NewSGDQAE creates the optimizer and resolves its estimation backend.
//
// Backend resolution happens once, here: an unknown backend id fails with
// backend.ConfigurationError, while cloud failures degrade to the
// simulated provider per the selector rules.
func NewSGDQAE(ctx context.Context, params []*param.Parameter, cfg SGDQAEConfig) (*SGDQAE, error) {
	if cfg.LR == 0 {
		cfg.LR = DefaultLR
	}
	if cfg.LR < 0 {
		return nil, fmt.Errorf("invalid learning rate %g", cfg.LR)
	}
	if cfg.Momentum < 0 || cfg.Momentum >= 1 {
		return nil, fmt.Errorf("invalid momentum %g", cfg.Momentum)
	}
	if cfg.Nesterov && cfg.Momentum == 0 {
		return nil, fmt.Errorf("nesterov momentum requires a momentum factor")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}

	est, err := estimator.New(ctx, estimator.Options{
		Backend:     cfg.Backend,
		StrictLocal: cfg.StrictLocal,
		Precision:   cfg.Precision,
		Shots:       cfg.Shots,
		Mode:        cfg.Mode,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		MaxParallel: cfg.MaxParallel,
		Backoff:     cfg.Backoff,
		CacheDir:    cfg.CacheDir,
		Env:         cfg.Env,
		Catalogs:    cfg.Catalogs,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	state := StateClassicalFallback
	if cfg.UseQuantum {
		state = StateQuantumActive
	}
	return &SGDQAE{
		params:  params,
		cfg:     cfg,
		est:     est,
		buffers: make(map[*param.Parameter]*tensor.Tensor),
		state:   state,
		rec:     rec,
		logger:  logger,
	}, nil
}

// State returns the current estimation state.
func (s *SGDQAE) State() State {
	return s.state
}

// StepCount returns the number of completed steps.
func (s *SGDQAE) StepCount() int {
	return s.step
}

// Estimator exposes the underlying estimator, mainly for inspection.
func (s *SGDQAE) Estimator() *estimator.Estimator {
	return s.est
}

// Step performs a single optimization step.
//
// The closure, when non-nil, recomputes the loss and repopulates
// gradients first. Parameters with a nil gradient are skipped. A quantum
// estimation failure does not fail the step: the optimizer switches to
// the classical path, finishes the step with the raw gradients, and
// reports the switch through the recorder.
func (s *SGDQAE) Step(ctx context.Context, closure Closure) (float64, error) {
	var loss float64
	if closure != nil {
		var err error
		loss, err = closure(ctx)
		if err != nil {
			return 0, fmt.Errorf("closure: %w", err)
		}
	}

	active := make([]*param.Parameter, 0, len(s.params))
	grads := make([]*tensor.Tensor, 0, len(s.params))
	for _, p := range s.params {
		if p.Grad() == nil {
			continue
		}
		active = append(active, p)
		grads = append(grads, p.Grad())
	}

	estimates, meta, err := s.est.Estimate(ctx, estimator.Request{
		Gradients: grads,
		Builder:   s.cfg.OracleBuilder,
		Params:    active,
		Quantum:   s.state == StateQuantumActive,
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.fallBack(err, &meta)
		estimates = make([]*tensor.Tensor, len(grads))
		for i, g := range grads {
			estimates[i] = g.Clone()
		}
	} else if s.fellBack {
		meta.Mode = estimator.ModeClassicalFallback
	}
	s.rec.RecordEstimate(s.step, meta)

	for i, p := range active {
		if err := s.update(p, estimates[i]); err != nil {
			return 0, fmt.Errorf("updating %s: %w", p.Name(), err)
		}
	}

	s.rec.RecordStep(StepRecord{
		Step:     s.step,
		Loss:     loss,
		Params:   len(active),
		Estimate: meta,
	})
	s.step++
	return loss, nil
}

// fallBack performs the one-way switch to the classical path.
func (s *SGDQAE) fallBack(cause error, meta *estimator.CallMetadata) {
	if s.state != StateQuantumActive {
		return
	}
	s.state = StateClassicalFallback
	s.fellBack = true
	meta.Mode = estimator.ModeClassicalFallback
	s.logger.Warn("quantum estimation failed, switching to classical gradients",
		"step", s.step, "error", cause)
	s.rec.RecordFallback(s.step, cause.Error())
}

// update applies the SGD rule to one parameter in-place. Scalar estimates
// from cloud backends are expanded to the parameter shape first.
func (s *SGDQAE) update(p *param.Parameter, est *tensor.Tensor) error {
	g := est.Clone()
	if g.IsScalar() && !p.Value().IsScalar() {
		v, err := g.Item()
		if err != nil {
			return err
		}
		g, err = tensor.Full(p.Value().Shape(), v)
		if err != nil {
			return err
		}
	}

	if s.cfg.WeightDecay != 0 {
		if err := g.AddScaled(p.Value(), s.cfg.WeightDecay); err != nil {
			return err
		}
	}

	if s.cfg.Momentum != 0 {
		buf, ok := s.buffers[p]
		if !ok {
			buf = g.Clone()
			s.buffers[p] = buf
		} else if err := buf.MulAdd(s.cfg.Momentum, g); err != nil {
			return err
		}
		if s.cfg.Nesterov {
			if err := g.AddScaled(buf, s.cfg.Momentum); err != nil {
				return err
			}
		} else {
			g = buf.Clone()
		}
	}

	return p.Value().AddScaled(g, -s.cfg.LR)
}

// ZeroGrad clears gradients for all parameters.
func (s *SGDQAE) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGDQAE) GetLR() float64 {
	return s.cfg.LR
}

// SetLR updates the learning rate. Useful for scheduling during training.
func (s *SGDQAE) SetLR(lr float64) {
	s.cfg.LR = lr
}
