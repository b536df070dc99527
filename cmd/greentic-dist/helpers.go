package main

import (
	"github.com/spf13/cobra"

	"github.com/greentic-ai/greentic-distributor-client/internal/config"
	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
)

// clientOptions assembles resolver options from config, environment, and
// the root command's flags.
func clientOptions(cmd *cobra.Command, cacheDir *string, offline *bool) dist.Options {
	cfg := config.Load(cmd.Flags())
	opts := cfg.DistOptions()

	if *cacheDir != "" {
		opts.CacheDir = *cacheDir
	}

	if *offline {
		opts.Offline = true
	}

	return opts
}
