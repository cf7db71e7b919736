package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"pomodoro/desktop/internal/model"
)

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// confirmResume asks whether to resume an interrupted phase. Any read error,
// including Ctrl+C, counts as no.
func confirmResume(phase model.Phase, remaining time.Duration) bool {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          resumePrompt(phase, remaining),
		InterruptPrompt: "^C",
	})
	if err != nil {
		return false
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return false
	}
	return isYes(line)
}

func resumePrompt(phase model.Phase, remaining time.Duration) string {
	cyan := color.New(color.FgCyan).SprintFunc()
	return fmt.Sprintf("Remaining time for %s: %s. Resume pomodoro? [y/N] ",
		phase, cyan(formatRemaining(remaining)))
}

func formatRemaining(d time.Duration) string {
	total := int((d + time.Second - 1) / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
