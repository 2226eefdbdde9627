package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/backend"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/logging"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/optim"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/param"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

type benchFlags struct {
	steps     int
	dim       int
	seed      int64
	lr        float64
	momentum  float64
	quantum   bool
	backendID string
	shots     int
	precision float64
	cacheDir  string
	tracePath string
}

// newBenchCmd trains on the synthetic quadratic f(w) = 0.5*||w||^2, whose
// gradient is w itself. It exists to exercise the full optimizer pipeline
// against a problem with a known answer (w -> 0).
func newBenchCmd() *cobra.Command {
	var f benchFlags
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic quadratic training loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(f.seed))
			data := make([]float64, f.dim)
			for i := range data {
				data[i] = rng.NormFloat64()
			}
			value, err := tensor.FromSlice(data, tensor.Shape{f.dim})
			if err != nil {
				return err
			}
			w := param.New("w", value)

			cfg := optim.SGDQAEConfig{
				LR:            f.lr,
				Momentum:      f.momentum,
				UseQuantum:    f.quantum,
				OracleBuilder: oracle.Amplitude(),
				Backend:       backend.ID(f.backendID),
				Shots:         f.shots,
				Precision:     f.precision,
				CacheDir:      f.cacheDir,
				Logger:        logger,
			}
			if f.tracePath != "" {
				trace, err := logging.OpenTrace(f.tracePath)
				if err != nil {
					return err
				}
				defer trace.Close()
				cfg.Recorder = trace
			}

			opt, err := optim.NewSGDQAE(cmd.Context(), []*param.Parameter{w}, cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			var loss float64
			for step := 0; step < f.steps; step++ {
				loss, err = opt.Step(cmd.Context(), func(context.Context) (float64, error) {
					// grad f(w) = w
					w.SetGrad(w.Value().Clone())
					n := w.Value().Norm()
					return 0.5 * n * n, nil
				})
				if err != nil {
					return fmt.Errorf("step %d: %w", step, err)
				}
				opt.ZeroGrad()
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"steps=%d dim=%d loss=%.6g norm=%.6g state=%s elapsed=%s\n",
				f.steps, f.dim, loss, w.Value().Norm(), opt.State(), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&f.steps, "steps", 100, "number of optimization steps")
	cmd.Flags().IntVar(&f.dim, "dim", 16, "parameter dimension")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "initialization seed")
	cmd.Flags().Float64Var(&f.lr, "lr", 0.1, "learning rate")
	cmd.Flags().Float64Var(&f.momentum, "momentum", 0, "momentum factor")
	cmd.Flags().BoolVar(&f.quantum, "quantum", false, "enable the amplitude-estimation path")
	cmd.Flags().StringVar(&f.backendID, "backend", string(backend.Auto), "estimation backend (auto, sim, ibm, braket)")
	cmd.Flags().IntVar(&f.shots, "shots", 0, "samples per estimation query")
	cmd.Flags().Float64Var(&f.precision, "precision", 0, "target estimation precision")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "estimation result cache directory")
	cmd.Flags().StringVar(&f.tracePath, "trace", "", "append a JSONL training trace to this file")
	return cmd
}
