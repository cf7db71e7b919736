package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pomodoro/desktop/internal/engine"
)

var controlCommands = []struct {
	command engine.Command
	short   string
}{
	{engine.CommandStart, "Start or resume the timer"},
	{engine.CommandPause, "Pause the running phase"},
	{engine.CommandStop, "Stop the timer, keeping the cycle count"},
	{engine.CommandReset, "Stop the timer and clear the cycle count"},
	{engine.CommandSkip, "Skip to the next phase"},
}

func newControlCmd(command engine.Command, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(command),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseVersion, _ := cmd.Flags().GetInt("base-version")

			ctx, cancel := requestContext(cmd)
			defer cancel()

			result, err := newClient().Command(ctx, string(command), baseVersion)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Applied {
				green := color.New(color.FgGreen).SprintFunc()
				fmt.Fprintf(out, "%s %s\n", green("✓"), command)
			} else {
				yellow := color.New(color.FgYellow).SprintFunc()
				fmt.Fprintf(out, "%s %s has no effect while %s\n", yellow("•"), command, result.State.Status)
			}
			printState(out, &result.State)
			return nil
		},
	}
	cmd.Flags().Int("base-version", 0, "reject the command if the state version differs")
	return cmd
}

func init() {
	for _, c := range controlCommands {
		rootCmd.AddCommand(newControlCmd(c.command, c.short))
	}
}
