// Package main provides the qsgd command line interface.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/logging"
)

const version = "v0.1.0-dev"

var (
	flagLogLevel string
	flagLogJSON  bool
	flagQuiet    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qsgd",
		Short:         "Quantum-assisted stochastic gradient descent",
		Long:          "qsgd trains with SGD whose gradient values can come from an amplitude-estimation backend, falling back to classical gradients when the backend fails.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit diagnostics as JSON")
	root.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "discard diagnostics")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newProvidersCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newBenchCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qsgd %s\n", version)
		},
	}
}

// newLogger builds the diagnostic logger from the persistent flags.
func newLogger() (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level: flagLogLevel,
		JSON:  flagLogJSON,
		Quiet: flagQuiet,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "qsgd: %v\n", err)
		os.Exit(1)
	}
}
