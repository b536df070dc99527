package main

import (
	"github.com/spf13/cobra"

	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
	clierrors "github.com/greentic-ai/greentic-distributor-client/internal/errors"
	"github.com/greentic-ai/greentic-distributor-client/internal/output"
)

// PullOutput is the JSON shape of a pull result.
type PullOutput struct {
	Reference string `json:"reference"`
	Digest    string `json:"digest"`
	CachePath string `json:"cache_path,omitempty"`
	Fetched   bool   `json:"fetched"`
}

func newPullCmd(cacheDir *string, offline *bool) *cobra.Command {
	var lockPath string

	cmd := &cobra.Command{
		Use:   "pull [reference]",
		Short: "Pull a reference or lockfile into the cache",
		Long: `Resolve a reference and make sure the artifact is present in the local
cache. With --lock, every entry of the lockfile is resolved in order.`,
		Example: `  greentic-dist pull ghcr.io/greentic/hello@sha256:...
  greentic-dist pull --lock pack.lock --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			client := dist.New(clientOptions(cmd, cacheDir, offline))

			if lockPath != "" {
				return pullLock(cmd, out, client, lockPath)
			}

			if len(args) == 0 {
				return clierrors.New(clierrors.ExitInvalid, "pull requires either a reference or --lock").
					WithHint("Pass a reference argument or --lock <path>")
			}

			return pullReference(cmd, out, client, args[0])
		},
	}

	cmd.Flags().StringVar(&lockPath, "lock", "", "Path to a lockfile to pull")

	return cmd
}

func pullReference(cmd *cobra.Command, out *output.Writer, client *dist.Client, reference string) error {
	spin := out.Spinner("Pulling " + reference)
	spin.Start()

	resolved, err := client.EnsureCached(cmd.Context(), reference)
	if err != nil {
		spin.StopWithFailure("Pull failed")
		return err
	}

	spin.StopWithSuccess("Pulled " + resolved.Digest)

	if out.JSON {
		return out.PrintJSON(PullOutput{
			Reference: reference,
			Digest:    resolved.Digest,
			CachePath: resolved.CachePath,
			Fetched:   resolved.Fetched,
		})
	}

	if resolved.CachePath != "" {
		out.Println(resolved.CachePath)
	} else {
		out.Println(resolved.Digest)
	}

	return nil
}

func pullLock(cmd *cobra.Command, out *output.Writer, client *dist.Client, lockPath string) error {
	spin := out.Spinner("Pulling lockfile " + lockPath)
	spin.Start()

	resolved, err := client.PullLock(cmd.Context(), lockPath)
	if err != nil {
		spin.StopWithFailure("Lockfile pull failed")
		return err
	}

	spin.StopWithSuccess("Lockfile pulled")

	if out.JSON {
		payload := make([]PullOutput, 0, len(resolved))
		for _, item := range resolved {
			payload = append(payload, PullOutput{
				Reference: item.Source.Value,
				Digest:    item.Digest,
				CachePath: item.CachePath,
				Fetched:   item.Fetched,
			})
		}

		return out.PrintJSON(payload)
	}

	for _, item := range resolved {
		out.Print("%s %s\n", item.Digest, item.CachePath)
	}

	return nil
}
