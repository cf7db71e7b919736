package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const statsBarWidth = 30

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completed pomodoros per day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		ctx, cancel := requestContext(cmd)
		defer cancel()

		stats, err := newClient().Stats(ctx, days)
		if err != nil {
			return err
		}

		peak := 0
		for _, day := range stats.Days {
			if day.Pomodoros > peak {
				peak = day.Pomodoros
			}
		}

		out := cmd.OutOrStdout()
		red := color.New(color.FgRed).SprintFunc()
		for _, day := range stats.Days {
			fmt.Fprintf(out, "%s %3d %s\n", day.Date, day.Pomodoros, red(bar(day.Pomodoros, peak, statsBarWidth)))
		}
		bold := color.New(color.Bold).SprintFunc()
		fmt.Fprintf(out, "%s %d pomodoros, %d minutes (today: %d)\n",
			bold("Total:"), stats.TotalPomodoros, stats.TotalMinutes, stats.Today)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("days", "d", 7, "number of days to include")
	rootCmd.AddCommand(statsCmd)
}
