package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"pomodoro/desktop/internal/model"
	"pomodoro/desktop/internal/service"
)

func printState(w io.Writer, state *service.StateView) {
	bold := color.New(color.Bold).SprintFunc()
	phase := phaseColor(state.Phase).SprintFunc()

	fmt.Fprintf(w, "%s %s", bold("Phase:"), phase(state.Phase))
	if state.Status != model.StatusIdle {
		fmt.Fprintf(w, " (%s)", state.Status)
	}
	fmt.Fprintln(w)

	if state.Status != model.StatusIdle {
		fmt.Fprintf(w, "  Remaining: %s of %s\n",
			formatClock(state.RemainingSeconds), formatClock(state.PhaseDurationSeconds))
	}
	fmt.Fprintf(w, "  Cycle:     %d/%d\n", state.CompletedWorkCycles, state.CyclesBeforeLongBreak)
	fmt.Fprintf(w, "  Completed: %d\n", state.TotalCompletedPomodoros)
	fmt.Fprintf(w, "  Profile:   %s\n", state.ProfileName)
}

func printProfile(w io.Writer, state *service.StateView) {
	fmt.Fprintf(w, "Profile %s\n", color.New(color.Bold).Sprint(state.ProfileName))
	fmt.Fprintf(w, "  Work:        %s\n", formatClock(state.WorkDurationSeconds))
	fmt.Fprintf(w, "  Short break: %s\n", formatClock(state.ShortBreakDurationSeconds))
	fmt.Fprintf(w, "  Long break:  %s\n", formatClock(state.LongBreakDurationSeconds))
	fmt.Fprintf(w, "  Cycles:      %d\n", state.CyclesBeforeLongBreak)
	fmt.Fprintf(w, "  Auto-start:  %t\n", state.AutoStartNextPhase)
}

func phaseColor(phase string) *color.Color {
	switch model.Phase(phase) {
	case model.PhaseWork:
		return color.New(color.FgRed, color.Bold)
	case model.PhaseShortBreak:
		return color.New(color.FgGreen, color.Bold)
	case model.PhaseLongBreak:
		return color.New(color.FgBlue, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// formatClock renders seconds as mm:ss, growing the minute field past 99.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func bar(count, max, width int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * width / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}
