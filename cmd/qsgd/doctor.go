package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/backend"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/cache"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose backend credentials and the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			env := config.NewResolver()

			for _, id := range backend.CloudIDs {
				vars := cloudCredentialVars[id]
				missing := make([]string, 0, len(vars))
				for _, name := range vars {
					if _, ok := env.Raw(name); !ok {
						missing = append(missing, name)
					}
				}
				switch {
				case len(missing) == 0:
					fmt.Fprintf(out, "ok\t%s credentials complete\n", id)
				case len(missing) == len(vars):
					fmt.Fprintf(out, "--\t%s credentials absent\n", id)
				default:
					// A partial set counts as absent, which usually means a typo.
					fmt.Fprintf(out, "warn\t%s credentials incomplete, missing %v\n", id, missing)
				}
			}

			resolved := backend.Sim
			for _, id := range backend.CloudIDs {
				if env.HasAll(cloudCredentialVars[id]) {
					resolved = id
					break
				}
			}
			fmt.Fprintf(out, "ok\tbackend \"auto\" selects %s\n", resolved)

			dir := cache.DefaultDir()
			if err := os.MkdirAll(dir, 0o750); err != nil {
				fmt.Fprintf(out, "fail\tcache directory %s not writable: %v\n", dir, err)
				return nil
			}
			fmt.Fprintf(out, "ok\tcache directory %s\n", dir)
			return nil
		},
	}
}
