package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dm-vev/hikari/dsl/timeconv"
	"github.com/spf13/cobra"
)

// NewTimeCmd creates the time command.
func NewTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Convert readable durations",
	}
	cmd.AddCommand(newParseCmd(), newFormatCmd())
	return cmd
}

func newParseCmd() *cobra.Command {
	var ticks bool
	cmd := &cobra.Command{
		Use:   "parse <duration>...",
		Short: "Parse a readable duration such as 1h3m2m23s",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := timeconv.Parse(strings.Join(args, ""))
			if ticks {
				fmt.Fprintln(cmd.OutOrStdout(), timeconv.Ticks(d))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ticks, "ticks", false, "print the duration in game ticks")
	return cmd
}

func newFormatCmd() *cobra.Command {
	var (
		opts  timeconv.FormatOptions
		until string
	)
	cmd := &cobra.Command{
		Use:   "format <duration>",
		Short: "Format a Go duration such as 3923s as a readable string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("parse duration: %w", err)
			}
			u, ok := timeconv.UnitByName(until)
			if !ok {
				return fmt.Errorf("unknown unit %q", until)
			}
			opts.Until = u
			fmt.Fprintln(cmd.OutOrStdout(), timeconv.Format(d, opts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Spaced, "spaced", false, "separate units with spaces")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "write full unit names")
	cmd.Flags().StringVar(&until, "until", "s", "smallest unit to write")
	return cmd
}
