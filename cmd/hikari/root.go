package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command of the CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hikari",
		Short: "Tools for servers running the Hikari Library",
		Long: `hikari inspects NBT files, converts readable durations and writes
the default library configuration.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(NewNBTCmd())
	cmd.AddCommand(NewTimeCmd())
	cmd.AddCommand(NewConfigCmd())
	return cmd
}
