package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/backend"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/config"
)

// cloudCredentialVars maps each cloud backend to its credential set.
var cloudCredentialVars = map[backend.ID][]string{
	backend.IBM:    config.IBMCredentialVars,
	backend.Braket: config.BraketCredentialVars,
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List estimation backends and their credential status",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.NewResolver()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tTYPE\tCREDENTIALS")
			fmt.Fprintln(w, "sim\tlocal\tnot required")
			for _, id := range backend.CloudIDs {
				status := "missing"
				if env.HasAll(cloudCredentialVars[id]) {
					status = "configured"
				}
				fmt.Fprintf(w, "%s\tcloud\t%s\n", id, status)
			}
			return w.Flush()
		},
	}
}
