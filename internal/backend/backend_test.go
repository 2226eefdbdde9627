package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/sched"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// fakeDevice is a test double for the vendor SDK seam.
type fakeDevice struct {
	name        string
	simulator   bool
	operational bool
	run         func(ctx context.Context, job EstimationJob) (float64, error)
}

func (d *fakeDevice) Name() string      { return d.name }
func (d *fakeDevice) Simulator() bool   { return d.simulator }
func (d *fakeDevice) Operational() bool { return d.operational }

func (d *fakeDevice) Run(ctx context.Context, job EstimationJob) (float64, error) {
	if d.run != nil {
		return d.run(ctx, job)
	}
	return oracle.Expectation(oracle.Describable(job.Preparation, job.Observable))
}

type fakeCatalog struct {
	devices []Device
	err     error
}

func (c *fakeCatalog) Devices(_ context.Context) ([]Device, error) {
	return c.devices, c.err
}

func operationalCatalog() *fakeCatalog {
	return &fakeCatalog{devices: []Device{
		&fakeDevice{name: "vendor_simulator", simulator: true, operational: true},
		&fakeDevice{name: "qpu_busy", operational: false},
		&fakeDevice{name: "qpu_main", operational: true},
	}}
}

func ibmEnv() *config.Resolver {
	return config.NewStaticResolver(map[string]string{
		"QOPT_IBM_TOKEN":    "token",
		"QOPT_IBM_INSTANCE": "instance",
	})
}

func testScheduler() *sched.Scheduler {
	return sched.New(sched.Config{MaxParallel: 2})
}

func zObservable() [][]float64 {
	return [][]float64{{1, 0}, {0, -1}}
}

// --- Error taxonomy ---

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", &TransientError{Op: "job", Err: errors.New("reset")}, true},
		{"estimation", &EstimationError{Provider: "ibm", Reason: "x"}, false},
		{"configuration", &ConfigurationError{Backend: "bogus"}, false},
		{"authentication", &AuthenticationError{Provider: "ibm", Reason: "bad token"}, false},
		{"plain error", errors.New("anything"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

// --- Simulated provider ---

func TestSimulated_ValueOraclesVerbatim(t *testing.T) {
	p := NewSimulated()
	g1, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2})
	g2, _ := tensor.FromSlice([]float64{3}, tensor.Shape{1})

	results, err := p.RunBatch(context.Background(), []oracle.Descriptor{
		oracle.Value(g1), oracle.Value(g2),
	}, RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Equal(g1))
	assert.True(t, results[1].Equal(g2))
	assert.NotSame(t, g1, results[0], "results must be copies")
}

func TestSimulated_DescribableExpectation(t *testing.T) {
	p := NewSimulated()
	results, err := p.RunBatch(context.Background(), []oracle.Descriptor{
		oracle.Describable([]float64{1, 0}, zObservable()),
	}, RunOptions{})
	require.NoError(t, err)

	v, err := results[0].Item()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestSimulated_MalformedOracle(t *testing.T) {
	p := NewSimulated()
	_, err := p.RunBatch(context.Background(), []oracle.Descriptor{
		oracle.Describable([]float64{1, 0}, [][]float64{{1}}),
	}, RunOptions{})

	var est *EstimationError
	require.ErrorAs(t, err, &est)
	assert.Equal(t, 0, est.Oracle)
}

// --- Cloud provider construction ---

func TestNewIBM_MissingCredentials(t *testing.T) {
	_, err := NewIBM(context.Background(), CloudConfig{
		Env:     config.NewStaticResolver(nil),
		Catalog: operationalCatalog(),
	})
	var auth *AuthenticationError
	require.ErrorAs(t, err, &auth)
	assert.Equal(t, "ibm", auth.Provider)
}

func TestNewIBM_PartialCredentialsCountAsAbsent(t *testing.T) {
	_, err := NewIBM(context.Background(), CloudConfig{
		Env:     config.NewStaticResolver(map[string]string{"QOPT_IBM_TOKEN": "t"}),
		Catalog: operationalCatalog(),
	})
	var auth *AuthenticationError
	assert.ErrorAs(t, err, &auth)
}

func TestNewIBM_CatalogAuthFailurePropagates(t *testing.T) {
	rejected := &AuthenticationError{Provider: "ibm", Reason: "token rejected"}
	_, err := NewIBM(context.Background(), CloudConfig{
		Env:     ibmEnv(),
		Catalog: &fakeCatalog{err: rejected},
	})
	assert.ErrorIs(t, err, rejected)
}

func TestNewIBM_NoOperationalDevice(t *testing.T) {
	tests := []struct {
		name    string
		catalog DeviceCatalog
	}{
		{"empty catalog", &fakeCatalog{}},
		{"nil catalog", nil},
		{"only simulators", &fakeCatalog{devices: []Device{
			&fakeDevice{name: "sv1", simulator: true, operational: true},
		}}},
		{"only offline devices", &fakeCatalog{devices: []Device{
			&fakeDevice{name: "qpu", operational: false},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIBM(context.Background(), CloudConfig{Env: ibmEnv(), Catalog: tt.catalog})
			var unavailable *BackendUnavailableError
			assert.ErrorAs(t, err, &unavailable)
		})
	}
}

func TestNewIBM_PicksFirstOperationalNonSimulator(t *testing.T) {
	p, err := NewIBM(context.Background(), CloudConfig{Env: ibmEnv(), Catalog: operationalCatalog()})
	require.NoError(t, err)
	assert.Equal(t, "qpu_main", p.Device())
	assert.Equal(t, "ibm", p.Name())
}

func TestNewBraket_CredentialSet(t *testing.T) {
	env := config.NewStaticResolver(map[string]string{
		"AWS_ACCESS_KEY_ID":     "id",
		"AWS_SECRET_ACCESS_KEY": "secret",
		"AWS_DEFAULT_REGION":    "us-east-1",
	})
	p, err := NewBraket(context.Background(), CloudConfig{Env: env, Catalog: operationalCatalog()})
	require.NoError(t, err)
	assert.Equal(t, "braket", p.Name())
}

// --- Cloud provider execution ---

func newTestIBM(t *testing.T, catalog DeviceCatalog, timeout time.Duration) *IBMProvider {
	t.Helper()
	p, err := NewIBM(context.Background(), CloudConfig{
		Env:       ibmEnv(),
		Catalog:   catalog,
		Scheduler: testScheduler(),
		Timeout:   timeout,
	})
	require.NoError(t, err)
	return p
}

func TestCloud_RunBatch_OrderedScalars(t *testing.T) {
	p := newTestIBM(t, operationalCatalog(), time.Second)

	oracles := []oracle.Descriptor{
		oracle.Describable([]float64{1, 0}, zObservable()),
		oracle.Describable([]float64{0, 1}, zObservable()),
	}
	results, err := p.RunBatch(context.Background(), oracles, RunOptions{Shots: 100, Epsilon: 0.05})
	require.NoError(t, err)
	require.Len(t, results, 2)

	v0, _ := results[0].Item()
	v1, _ := results[1].Item()
	assert.InDelta(t, 1.0, v0, 1e-12)
	assert.InDelta(t, -1.0, v1, 1e-12)
	assert.True(t, results[0].IsScalar())
}

func TestCloud_RunBatch_RejectsValueOracle(t *testing.T) {
	p := newTestIBM(t, operationalCatalog(), time.Second)
	g := tensor.Scalar(1)

	_, err := p.RunBatch(context.Background(), []oracle.Descriptor{oracle.Value(g)}, RunOptions{})
	var est *EstimationError
	assert.ErrorAs(t, err, &est)
}

func TestCloud_RunBatch_DimensionMismatch(t *testing.T) {
	var submitted int
	catalog := &fakeCatalog{devices: []Device{&fakeDevice{
		name: "qpu", operational: true,
		run: func(ctx context.Context, job EstimationJob) (float64, error) {
			submitted++
			return 0, nil
		},
	}}}
	p := newTestIBM(t, catalog, time.Second)

	_, err := p.RunBatch(context.Background(), []oracle.Descriptor{
		oracle.Describable([]float64{1, 0}, zObservable()),
		oracle.Describable([]float64{1, 0, 0}, zObservable()),
	}, RunOptions{})

	var est *EstimationError
	require.ErrorAs(t, err, &est)
	assert.Equal(t, 1, est.Oracle)
	assert.Zero(t, submitted, "malformed batches must not reach the device")
}

func TestCloud_RunBatch_TimeoutIsTransient(t *testing.T) {
	catalog := &fakeCatalog{devices: []Device{&fakeDevice{
		name: "qpu", operational: true,
		run: func(ctx context.Context, job EstimationJob) (float64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	}}}
	p := newTestIBM(t, catalog, 5*time.Millisecond)

	_, err := p.RunBatch(context.Background(), []oracle.Descriptor{
		oracle.Describable([]float64{1, 0}, zObservable()),
	}, RunOptions{})

	assert.True(t, Retryable(err), "job timeout must be retryable: %v", err)
}

func TestCloud_RunBatch_DeviceFailureFailsBatch(t *testing.T) {
	var calls int
	catalog := &fakeCatalog{devices: []Device{&fakeDevice{
		name: "qpu", operational: true,
		run: func(ctx context.Context, job EstimationJob) (float64, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("connection reset")
			}
			return 1, nil
		},
	}}}
	p, err := NewIBM(context.Background(), CloudConfig{
		Env:       ibmEnv(),
		Catalog:   catalog,
		Scheduler: sched.New(sched.Config{MaxParallel: 1}),
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	_, err = p.RunBatch(context.Background(), []oracle.Descriptor{
		oracle.Describable([]float64{1, 0}, zObservable()),
		oracle.Describable([]float64{0, 1}, zObservable()),
	}, RunOptions{})

	var transient *TransientError
	assert.ErrorAs(t, err, &transient, "batch must fail as a unit")
}

// --- Selector ---

func TestResolve_Simulated(t *testing.T) {
	p, err := Resolve(context.Background(), Sim, SelectorConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Simulated{}, p)
}

func TestResolve_StrictLocalBeatsExplicitCloud(t *testing.T) {
	p, err := Resolve(context.Background(), IBM, SelectorConfig{
		StrictLocal: true,
		Env:         ibmEnv(),
		Catalogs:    map[ID]DeviceCatalog{IBM: operationalCatalog()},
	})
	require.NoError(t, err)
	assert.IsType(t, &Simulated{}, p)
}

func TestResolve_AutoWithoutCredentials(t *testing.T) {
	p, err := Resolve(context.Background(), Auto, SelectorConfig{
		Env: config.NewStaticResolver(nil),
	})
	require.NoError(t, err)
	assert.IsType(t, &Simulated{}, p)
}

func TestResolve_AutoPartialCredentialsDegrade(t *testing.T) {
	p, err := Resolve(context.Background(), Auto, SelectorConfig{
		Env:      config.NewStaticResolver(map[string]string{"QOPT_IBM_TOKEN": "t"}),
		Catalogs: map[ID]DeviceCatalog{IBM: operationalCatalog()},
	})
	require.NoError(t, err)
	assert.IsType(t, &Simulated{}, p)
}

func TestResolve_AutoWithWorkingCloud(t *testing.T) {
	p, err := Resolve(context.Background(), Auto, SelectorConfig{
		Env:      ibmEnv(),
		Catalogs: map[ID]DeviceCatalog{IBM: operationalCatalog()},
	})
	require.NoError(t, err)
	assert.IsType(t, &IBMProvider{}, p)
}

func TestResolve_AutoConstructionFailureDegradesSilently(t *testing.T) {
	p, err := Resolve(context.Background(), Auto, SelectorConfig{
		Env:      ibmEnv(),
		Catalogs: map[ID]DeviceCatalog{IBM: &fakeCatalog{err: errors.New("endpoint down")}},
	})
	require.NoError(t, err, "auto resolution never raises")
	assert.IsType(t, &Simulated{}, p)
}

func TestResolve_ExplicitCloudDegradesOnFailure(t *testing.T) {
	p, err := Resolve(context.Background(), IBM, SelectorConfig{
		Env: config.NewStaticResolver(nil),
	})
	require.NoError(t, err)
	assert.IsType(t, &Simulated{}, p)
}

func TestResolve_UnknownBackend(t *testing.T) {
	_, err := Resolve(context.Background(), ID("dwave"), SelectorConfig{})
	var cfg *ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "dwave", cfg.Backend)
}
