package engine

import "pomodoro/desktop/internal/model"

// Command is a user-facing engine operation.
type Command string

const (
	CommandStart Command = "start"
	CommandStop  Command = "stop"
	CommandPause Command = "pause"
	CommandReset Command = "reset"
	CommandSkip  Command = "skip"
)

// Commands lists every command in display order.
var Commands = []Command{CommandStart, CommandPause, CommandStop, CommandSkip, CommandReset}

// ParseCommand maps a name to a Command.
func ParseCommand(name string) (Command, error) {
	cmd := Command(name)
	for _, known := range Commands {
		if cmd == known {
			return cmd, nil
		}
	}
	return "", ErrUnknownCommand
}

// Allowed reports whether cmd is valid for the given phase and pause flag.
// It depends on nothing else, so hosts can use it to drive UI enablement.
func Allowed(cmd Command, phase model.Phase, paused bool) bool {
	idle := phase == model.PhaseIdle
	switch cmd {
	case CommandStart:
		return idle || paused
	case CommandStop, CommandSkip:
		return !idle
	case CommandPause:
		return !idle && !paused
	case CommandReset:
		return true
	}
	return false
}

// AllowedCommands returns the commands valid in the given state.
func AllowedCommands(phase model.Phase, paused bool) []Command {
	allowed := make([]Command, 0, len(Commands))
	for _, cmd := range Commands {
		if Allowed(cmd, phase, paused) {
			allowed = append(allowed, cmd)
		}
	}
	return allowed
}
