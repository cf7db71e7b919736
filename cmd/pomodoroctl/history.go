package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed pomodoros, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := requestContext(cmd)
		defer cancel()

		records, err := newClient().History(ctx, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No completed pomodoros yet.")
			return nil
		}
		for _, record := range records {
			fmt.Fprintf(out, "%s  %3d min  %s\n",
				record.CompletedAt.Local().Format("2006-01-02 15:04"),
				record.DurationMinutes,
				record.ProfileName)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
