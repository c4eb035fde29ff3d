package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the vivamos admin CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vivactl",
		Short: "vivamos administration tool",
		Long: `vivactl performs operator tasks against a vivamos deployment:
hashing account passwords and applying database migrations.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewVerifyPasswordCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
