package main

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/greentic-ai/greentic-distributor-client/internal/errors"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands (stub)",
		Long: `Authentication against repo:// and store:// backends is not implemented
yet; the subcommands exist so scripts can probe for support.`,
	}

	cmd.AddCommand(newAuthLoginCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "login <target>",
		Short:   "Log in to a repo or store backend (stub)",
		Example: `  greentic-dist auth login repo://components.greentic.ai`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return clierrors.New(clierrors.ExitAuth,
				fmt.Sprintf("auth login for %q is not implemented yet; stubbed for future store/repo", args[0]))
		},
	}
}
