package backend

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/sched"
)

// SelectorConfig configures backend resolution.
type SelectorConfig struct {
	// StrictLocal forces the simulated provider regardless of the id.
	StrictLocal bool

	// Env resolves credential variables. Nil reads the process environment.
	Env *config.Resolver

	// Scheduler is handed to constructed cloud providers.
	Scheduler *sched.Scheduler

	// Timeout bounds each cloud job.
	Timeout time.Duration

	// Catalogs supplies the device catalog per cloud backend. A cloud
	// backend without a catalog is unreachable and resolves like any
	// other construction failure.
	Catalogs map[ID]DeviceCatalog

	// Diagnostics receives records for silently degraded resolutions.
	// Nil discards them.
	Diagnostics *slog.Logger
}

// credentialVars returns the credential variable set for a cloud backend.
func credentialVars(id ID) []string {
	switch id {
	case IBM:
		return config.IBMCredentialVars
	case Braket:
		return config.BraketCredentialVars
	default:
		return nil
	}
}

// Resolve maps a backend identifier to a concrete provider.
//
// Rules:
//   - StrictLocal or "sim" resolves to Simulated unconditionally.
//   - "auto" tries each cloud backend whose full credential set is
//     present; construction failures degrade silently to Simulated.
//   - An explicit cloud id is always attempted; on failure it degrades to
//     Simulated and emits a diagnostic record.
//   - An unknown id fails with ConfigurationError.
func Resolve(ctx context.Context, id ID, cfg SelectorConfig) (Provider, error) {
	diag := cfg.Diagnostics
	if diag == nil {
		diag = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	env := cfg.Env
	if env == nil {
		env = config.NewResolver()
	}

	if cfg.StrictLocal || id == Sim {
		return NewSimulated(), nil
	}

	switch id {
	case Auto:
		for _, cloudID := range CloudIDs {
			if !env.HasAll(credentialVars(cloudID)) {
				continue
			}
			p, err := buildCloud(ctx, cloudID, env, cfg)
			if err != nil {
				diag.Debug("auto resolution skipped cloud backend",
					"backend", cloudID, "error", err)
				continue
			}
			return p, nil
		}
		return NewSimulated(), nil

	case IBM, Braket:
		p, err := buildCloud(ctx, id, env, cfg)
		if err != nil {
			diag.Warn("cloud backend construction failed, degrading to simulated",
				"backend", id, "error", err)
			return NewSimulated(), nil
		}
		return p, nil

	default:
		return nil, &ConfigurationError{Backend: string(id)}
	}
}

func buildCloud(ctx context.Context, id ID, env *config.Resolver, cfg SelectorConfig) (Provider, error) {
	cloudCfg := CloudConfig{
		Env:       env,
		Catalog:   cfg.Catalogs[id],
		Scheduler: cfg.Scheduler,
		Timeout:   cfg.Timeout,
	}
	switch id {
	case IBM:
		return NewIBM(ctx, cloudCfg)
	case Braket:
		return NewBraket(ctx, cloudCfg)
	default:
		return nil, &ConfigurationError{Backend: string(id)}
	}
}
