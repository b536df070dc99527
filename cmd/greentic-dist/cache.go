package main

import (
	"github.com/spf13/cobra"

	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
	"github.com/greentic-ai/greentic-distributor-client/internal/output"
)

func newCacheCmd(cacheDir *string, offline *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the component cache",
		Long: `Inspect and maintain the local content-addressed component cache.
Entries are keyed by sha256 digest; gc reclaims directories left behind by
interrupted writes.`,
	}

	cmd.AddCommand(newCacheLsCmd(cacheDir, offline))
	cmd.AddCommand(newCacheRmCmd(cacheDir, offline))
	cmd.AddCommand(newCacheGcCmd(cacheDir, offline))

	return cmd
}

func newCacheLsCmd(cacheDir *string, offline *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List cached digests",
		Example: `  greentic-dist cache ls --json`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			client := dist.New(clientOptions(cmd, cacheDir, offline))

			digests := client.ListCache()

			if out.JSON {
				return out.PrintJSON(digests)
			}

			for _, dgst := range digests {
				out.Println(dgst)
			}

			return nil
		},
	}
}

func newCacheRmCmd(cacheDir *string, offline *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <digest>...",
		Short:   "Remove cached digests",
		Example: `  greentic-dist cache rm sha256:abc... sha256:def...`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			client := dist.New(clientOptions(cmd, cacheDir, offline))

			if err := client.RemoveCached(args); err != nil {
				return err
			}

			if out.JSON {
				return out.PrintJSON(args)
			}

			out.Success("Removed %d cache entries", len(args))

			return nil
		},
	}
}

func newCacheGcCmd(cacheDir *string, offline *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "gc",
		Short:   "Garbage-collect broken cache entries",
		Example: `  greentic-dist cache gc`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			client := dist.New(clientOptions(cmd, cacheDir, offline))

			removed, err := client.GC()
			if err != nil {
				return err
			}

			if out.JSON {
				if removed == nil {
					removed = []string{}
				}

				return out.PrintJSON(removed)
			}

			if len(removed) == 0 {
				out.Muted("Nothing to reclaim")
				return nil
			}

			for _, dgst := range removed {
				out.Println(dgst)
			}

			out.Success("Reclaimed %d dangling entries", len(removed))

			return nil
		},
	}
}
