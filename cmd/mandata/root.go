package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mandata",
		Short:         "Reconciliation and sync engine for French public officials",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSourcesCmd())
	return cmd
}
