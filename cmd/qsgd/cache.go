package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the estimation result cache",
	}

	var dir string

	dirCmd := &cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Run: func(cmd *cobra.Command, args []string) {
			d := dir
			if d == "" {
				d = cache.DefaultDir()
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all cached estimation results",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			c, err := cache.New(dir, logger)
			if err != nil {
				return err
			}
			if err := c.Purge(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged cache at %s\n", c.Dir())
			return nil
		},
	}

	cacheCmd.PersistentFlags().StringVar(&dir, "dir", "", "cache directory (default ~/.qopt/cache)")
	cacheCmd.AddCommand(dirCmd, purgeCmd)
	return cacheCmd
}
