package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
	"github.com/greentic-ai/greentic-distributor-client/internal/observability"
	"github.com/greentic-ai/greentic-distributor-client/internal/output"
)

// ResolveOutput is the JSON shape of a resolve result.
type ResolveOutput struct {
	Reference string `json:"reference"`
	Digest    string `json:"digest"`
}

func newResolveCmd(cacheDir *string, offline *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <reference>",
		Short: "Resolve a reference and print its digest",
		Long: `Classify a reference (digest, path, http(s) URL, or OCI reference),
resolve it, and print the resulting content digest. Remote references are
fetched into the cache; digest references only report cache state.`,
		Example: `  greentic-dist resolve ./component.wasm
  greentic-dist resolve ghcr.io/greentic/hello@sha256:...
  greentic-dist resolve https://example.com/component.wasm --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			reference := args[0]

			observability.FromContext(cmd.Context()).Info("resolving reference",
				slog.String("component", "cli"),
				slog.String("event.type", "cli.resolve.start"),
				slog.String("dist.reference", reference))

			client := dist.New(clientOptions(cmd, cacheDir, offline))

			resolved, err := client.ResolveRef(cmd.Context(), reference)
			if err != nil {
				return err
			}

			if out.JSON {
				return out.PrintJSON(ResolveOutput{
					Reference: reference,
					Digest:    resolved.Digest,
				})
			}

			out.Println(resolved.Digest)

			return nil
		},
	}
}
