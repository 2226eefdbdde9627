// Package estimator implements the gradient-estimation façade.
//
// An Estimator decides between the classical and the probabilistic path
// for each call, fans describable oracles out to the resolved backend
// provider through the scheduler, and memoizes results in the
// content-addressed cache. It never makes fallback decisions: quantum
// path failures propagate with error-fallback metadata attached, and the
// optimizer step engine decides what to do with them.
package estimator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/backend"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/cache"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/param"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/sched"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// Mode tags how a call's estimates were produced.
type Mode string

// Estimation modes reported in call metadata.
const (
	ModeClassicalMC       Mode = "classical-mc"
	ModeQuantum           Mode = "quantum"
	ModeClassicalFallback Mode = "classical-fallback"
	ModeErrorFallback     Mode = "error-fallback"
)

// CallMetadata describes one estimate() call.
type CallMetadata struct {
	Mode      Mode    `json:"mode"`
	Backend   string  `json:"backend"`
	Shots     int     `json:"shots"`
	Precision float64 `json:"precision"`
	Cached    bool    `json:"cached,omitempty"`
	Err       string  `json:"error,omitempty"`
}

// Options configures an Estimator.
type Options struct {
	// Backend selects the provider ("auto", "sim", "ibm", "braket").
	Backend backend.ID

	// StrictLocal forces the simulated provider.
	StrictLocal bool

	// Precision is the requested error tolerance (epsilon).
	Precision float64

	// Shots is the sample count per estimation query.
	Shots int

	// Mode selects the estimation algorithm ("iterative" or "mlae").
	Mode string

	// Timeout bounds each cloud job.
	Timeout time.Duration

	// MaxRetries is the number of scheduler retries around a batch. Zero
	// means DefaultMaxRetries; a negative value disables retries.
	MaxRetries int

	// MaxParallel bounds concurrent job submissions per batch.
	MaxParallel int

	// Backoff shapes the retry delays. Zero value uses sched.DefaultBackoff.
	Backoff sched.Backoff

	// CacheDir roots the result cache. Empty disables caching.
	CacheDir string

	// Env resolves credentials. Nil reads the process environment.
	Env *config.Resolver

	// Catalogs supplies the device catalog per cloud backend.
	Catalogs map[backend.ID]backend.DeviceCatalog

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Default option values, matching the original tool's switches.
const (
	DefaultPrecision   = 0.02
	DefaultShots       = 2000
	DefaultMode        = "iterative"
	DefaultMaxRetries  = 2
	DefaultMaxParallel = 2
)

func (o *Options) fillDefaults() {
	if o.Backend == "" {
		o.Backend = backend.Sim
	}
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
	if o.Shots <= 0 {
		o.Shots = DefaultShots
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = DefaultMaxRetries
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = DefaultMaxParallel
	}
	if o.Backoff == (sched.Backoff{}) {
		o.Backoff = sched.DefaultBackoff
	}
}

// Request is one estimate() call.
type Request struct {
	// Gradients are the per-parameter gradients to estimate.
	Gradients []*tensor.Tensor

	// Builder constructs one describable oracle per gradient. Nil means
	// no oracle builder was supplied.
	Builder oracle.Builder

	// Params are the parameters the gradients belong to, when available.
	Params []*param.Parameter

	// Quantum enables the probabilistic path for this call.
	Quantum bool
}

// Estimator produces gradient estimates and per-call metadata.
type Estimator struct {
	opts     Options
	provider backend.Provider
	sched    *sched.Scheduler
	cache    *cache.Cache
	logger   *slog.Logger
}

// New resolves the backend and builds an estimator. An unknown backend id
// fails with backend.ConfigurationError; cloud construction failures
// degrade per the selector rules and never surface here.
func New(ctx context.Context, opts Options) (*Estimator, error) {
	opts.fillDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := sched.New(sched.Config{MaxParallel: opts.MaxParallel, Logger: logger})
	provider, err := backend.Resolve(ctx, opts.Backend, backend.SelectorConfig{
		StrictLocal: opts.StrictLocal,
		Env:         opts.Env,
		Scheduler:   s,
		Timeout:     opts.Timeout,
		Catalogs:    opts.Catalogs,
		Diagnostics: logger,
	})
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if opts.CacheDir != "" {
		c, err = cache.New(opts.CacheDir, logger)
		if err != nil {
			return nil, fmt.Errorf("opening result cache: %w", err)
		}
	}

	return &Estimator{opts: opts, provider: provider, sched: s, cache: c, logger: logger}, nil
}

// Provider returns the resolved backend provider.
func (e *Estimator) Provider() backend.Provider {
	return e.provider
}

// Simulated reports whether the resolved provider is the classical
// simulated path.
func (e *Estimator) Simulated() bool {
	_, ok := e.provider.(*backend.Simulated)
	return ok
}

// Estimate produces one estimate per gradient, plus call metadata.
//
// The classical path is taken when the quantum path is disabled, the
// resolved provider is simulated, or no oracle builder was supplied; it
// returns the gradients verbatim with mode classical-mc. The quantum path
// builds one oracle per gradient, consults the cache, and submits misses
// through the scheduler with retry. Quantum path failures are not
// swallowed: they return with mode error-fallback and the error text
// attached.
//
// The result always has the same length and order as the gradient
// sequence.
func (e *Estimator) Estimate(ctx context.Context, req Request) ([]*tensor.Tensor, CallMetadata, error) {
	meta := CallMetadata{
		Backend:   e.provider.Name(),
		Shots:     e.opts.Shots,
		Precision: e.opts.Precision,
	}

	if !req.Quantum || e.Simulated() || req.Builder == nil {
		meta.Mode = ModeClassicalMC
		estimates := make([]*tensor.Tensor, len(req.Gradients))
		for i, g := range req.Gradients {
			estimates[i] = g.Clone()
		}
		return estimates, meta, nil
	}

	estimates, cached, err := e.runQuantum(ctx, req)
	if err != nil {
		meta.Mode = ModeErrorFallback
		meta.Err = err.Error()
		return nil, meta, err
	}
	meta.Mode = ModeQuantum
	meta.Cached = cached
	return estimates, meta, nil
}

// runQuantum executes the probabilistic path: oracle construction, cache
// lookup, batch submission with retry, cache fill.
func (e *Estimator) runQuantum(ctx context.Context, req Request) ([]*tensor.Tensor, bool, error) {
	// Estimate routes builder-less requests down the classical path, so a
	// builder is always present here.
	oracles := make([]oracle.Descriptor, len(req.Gradients))
	for i, g := range req.Gradients {
		d, err := req.Builder(g, i)
		if err != nil {
			return nil, false, fmt.Errorf("building oracle %d: %w", i, err)
		}
		oracles[i] = d
	}

	key := e.requestKey(oracles)
	if e.cache != nil {
		if blob, ok := e.cache.Get(key); ok {
			estimates, err := decodeEstimates(blob)
			if err == nil && len(estimates) == len(req.Gradients) {
				return estimates, true, nil
			}
			e.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		}
	}

	opts := backend.RunOptions{Shots: e.opts.Shots, Epsilon: e.opts.Precision, Mode: e.opts.Mode}
	estimates, err := sched.Retry(ctx, func(ctx context.Context) ([]*tensor.Tensor, error) {
		return e.provider.RunBatch(ctx, oracles, opts)
	}, e.opts.MaxRetries, e.opts.Backoff, backend.Retryable)
	if err != nil {
		return nil, false, err
	}
	if len(estimates) != len(req.Gradients) {
		return nil, false, fmt.Errorf("provider %s returned %d estimates for %d oracles",
			e.provider.Name(), len(estimates), len(req.Gradients))
	}

	if e.cache != nil {
		blob, err := encodeEstimates(estimates)
		if err == nil {
			if err := e.cache.Set(key, blob); err != nil {
				e.logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
	}
	return estimates, false, nil
}
