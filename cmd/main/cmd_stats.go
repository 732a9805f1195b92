package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toastCount int64

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard overview",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := app.Stats.Compute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Main categories: %d\n", stats.Categories)
		fmt.Fprintf(out, "Updates:         %d\n", stats.Updates)
		fmt.Fprintf(out, "Pinned updates:  %d\n", stats.PinnedUpdates)
		return nil
	},
}

var toastsCmd = &cobra.Command{
	Use:   "toasts",
	Short: "Show recent notifications from all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		toasts, err := app.Toasts.Recent(cmd.Context(), toastCount)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, t := range toasts {
			fmt.Fprintf(out, "%s  %-7s  %s\n", t.At.Local().Format("2006-01-02 15:04:05"), t.Kind, t.Message)
		}
		return nil
	},
}

func init() {
	toastsCmd.Flags().Int64VarP(&toastCount, "count", "n", 20, "Number of notifications to show")
}
