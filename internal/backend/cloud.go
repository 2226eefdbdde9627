package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/sched"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// CloudConfig configures a cloud provider.
type CloudConfig struct {
	// Env resolves credential variables. Nil reads the process environment.
	Env *config.Resolver

	// Catalog lists the account's devices. Required: a nil catalog means
	// the vendor SDK is not wired in, so no device is reachable.
	Catalog DeviceCatalog

	// Scheduler fans out per-oracle job submissions.
	Scheduler *sched.Scheduler

	// Timeout bounds each job submission. Zero means DefaultJobTimeout.
	Timeout time.Duration
}

// DefaultJobTimeout bounds a single cloud job when none is configured.
const DefaultJobTimeout = 60 * time.Second

// cloud is the shared implementation behind the cloud provider variants.
// Authentication and device discovery happen once, at construction.
type cloud struct {
	name    string
	device  Device
	sched   *sched.Scheduler
	timeout time.Duration
}

// newCloud authenticates and selects a device for the named provider.
func newCloud(ctx context.Context, name string, credVars []string, cfg CloudConfig) (*cloud, error) {
	env := cfg.Env
	if env == nil {
		env = config.NewResolver()
	}
	if !env.HasAll(credVars) {
		return nil, &AuthenticationError{
			Provider: name,
			Reason:   fmt.Sprintf("missing credential variables (need %s)", strings.Join(credVars, ", ")),
		}
	}
	if cfg.Catalog == nil {
		return nil, &BackendUnavailableError{Provider: name}
	}

	devices, err := cfg.Catalog.Devices(ctx)
	if err != nil {
		var auth *AuthenticationError
		if errors.As(err, &auth) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: listing devices: %w", name, err)
	}

	var device Device
	for _, d := range devices {
		if d.Operational() && !d.Simulator() {
			device = d
			break
		}
	}
	if device == nil {
		return nil, &BackendUnavailableError{Provider: name}
	}

	s := cfg.Scheduler
	if s == nil {
		s = sched.New(sched.Config{MaxParallel: 2})
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &cloud{name: name, device: device, sched: s, timeout: timeout}, nil
}

// Name implements Provider.
func (c *cloud) Name() string {
	return c.name
}

// Device returns the selected device name.
func (c *cloud) Device() string {
	return c.device.Name()
}

// RunBatch implements Provider. Every oracle must be describable; one job
// is submitted per oracle and each job blocks up to the configured
// timeout. The batch fails as a unit on the first job failure.
func (c *cloud) RunBatch(ctx context.Context, oracles []oracle.Descriptor, opts RunOptions) ([]*tensor.Tensor, error) {
	// Validate the whole batch before submitting anything.
	for i, d := range oracles {
		if d.Kind() != oracle.KindDescribable {
			return nil, &EstimationError{
				Provider: c.name, Oracle: i,
				Reason: fmt.Sprintf("cloud execution requires a describable oracle, got %s", d.Kind()),
			}
		}
		if err := d.Validate(); err != nil {
			return nil, &EstimationError{Provider: c.name, Oracle: i, Reason: err.Error()}
		}
	}

	jobs := make([]sched.Job[*tensor.Tensor], len(oracles))
	for i, d := range oracles {
		job := EstimationJob{
			Preparation: d.Preparation(),
			Observable:  d.Observable(),
			Shots:       opts.Shots,
			Epsilon:     opts.Epsilon,
			Mode:        opts.Mode,
		}
		index := i
		jobs[i] = func(ctx context.Context) (*tensor.Tensor, error) {
			jctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			value, err := c.device.Run(jctx, job)
			if err != nil {
				return nil, c.classify(index, err)
			}
			return tensor.Scalar(value), nil
		}
	}
	return sched.BatchRun(ctx, c.sched, jobs)
}

// classify maps a device failure onto the error taxonomy. Estimation
// errors pass through unmodified; timeouts and everything else from the
// wire are transient.
func (c *cloud) classify(oracleIndex int, err error) error {
	var est *EstimationError
	if errors.As(err, &est) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{
			Op:  fmt.Sprintf("%s job %d", c.name, oracleIndex),
			Err: fmt.Errorf("timed out after %s: %w", c.timeout, err),
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransientError{Op: fmt.Sprintf("%s job %d", c.name, oracleIndex), Err: err}
}

// IBMProvider submits estimation jobs to IBM cloud devices.
type IBMProvider struct {
	cloud
}

// NewIBM constructs the IBM provider. Credentials are checked once here;
// missing or rejected credentials fail with AuthenticationError.
func NewIBM(ctx context.Context, cfg CloudConfig) (*IBMProvider, error) {
	c, err := newCloud(ctx, string(IBM), config.IBMCredentialVars, cfg)
	if err != nil {
		return nil, err
	}
	return &IBMProvider{cloud: *c}, nil
}

// BraketProvider submits estimation jobs to AWS Braket devices.
type BraketProvider struct {
	cloud
}

// NewBraket constructs the Braket provider under the same contract as NewIBM.
func NewBraket(ctx context.Context, cfg CloudConfig) (*BraketProvider, error) {
	c, err := newCloud(ctx, string(Braket), config.BraketCredentialVars, cfg)
	if err != nil {
		return nil, err
	}
	return &BraketProvider{cloud: *c}, nil
}
