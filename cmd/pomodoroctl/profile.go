package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pomodoro/desktop/internal/client"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change the timer profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileShowCmd.RunE(cmd, args)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active profile and the stored ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		c := newClient()
		state, err := c.State(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printProfile(out, state)

		profiles, err := c.Profiles(ctx)
		if err != nil {
			return err
		}
		if len(profiles) > 1 {
			fmt.Fprintln(out, "\nStored profiles:")
			for _, p := range profiles {
				marker := " "
				if p.Active {
					marker = "*"
				}
				fmt.Fprintf(out, " %s %s\n", marker, p.Name)
			}
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change durations or switch profile (timer must be idle)",
	Long: `Change durations or switch profile. Unset flags keep the values of the
named profile, or of the active one when --name is omitted. The timer must be
idle; stop it first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		update := client.ProfileUpdate{}
		update.Name, _ = flags.GetString("name")
		work, _ := flags.GetDuration("work")
		shortBreak, _ := flags.GetDuration("short-break")
		longBreak, _ := flags.GetDuration("long-break")
		update.WorkDurationSeconds = int(work / time.Second)
		update.ShortBreakDurationSeconds = int(shortBreak / time.Second)
		update.LongBreakDurationSeconds = int(longBreak / time.Second)
		update.CyclesBeforeLongBreak, _ = flags.GetInt("cycles")
		if flags.Changed("auto-start") {
			autoStart, _ := flags.GetBool("auto-start")
			update.AutoStartNextPhase = &autoStart
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		state, err := newClient().UpdateProfile(ctx, update)
		if err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s profile updated\n", green("✓"))
		printProfile(cmd.OutOrStdout(), state)
		return nil
	},
}

func init() {
	flags := profileSetCmd.Flags()
	flags.String("name", "", "profile to update or switch to")
	flags.Duration("work", 0, "work duration, e.g. 25m")
	flags.Duration("short-break", 0, "short break duration")
	flags.Duration("long-break", 0, "long break duration")
	flags.Int("cycles", 0, "work cycles before a long break")
	flags.Bool("auto-start", false, "start the next phase automatically")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
