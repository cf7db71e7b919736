package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/desktop/internal/model"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		phase  model.Phase
		paused bool
		want   []Command
	}{
		{model.PhaseIdle, false, []Command{CommandStart, CommandReset}},
		{model.PhaseWork, false, []Command{CommandPause, CommandStop, CommandSkip, CommandReset}},
		{model.PhaseWork, true, []Command{CommandStart, CommandStop, CommandSkip, CommandReset}},
		{model.PhaseShortBreak, false, []Command{CommandPause, CommandStop, CommandSkip, CommandReset}},
		{model.PhaseLongBreak, true, []Command{CommandStart, CommandStop, CommandSkip, CommandReset}},
	}
	for _, tt := range tests {
		got := AllowedCommands(tt.phase, tt.paused)
		assert.Equal(t, tt.want, got, "phase=%s paused=%v", tt.phase, tt.paused)
	}
}

func TestAllowedMatchesEngine(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultProfile())
	steps := []Command{CommandStart, CommandPause, CommandSkip, CommandPause, CommandStart, CommandStop}

	for _, step := range steps {
		status := engine.Status()
		for _, cmd := range Commands {
			assert.Equal(t, Allowed(cmd, status.Phase, status.Paused), engine.Can(cmd), "%s in %s", cmd, status.State())
		}
		applied, _, err := engine.Execute(step, 0)
		require.NoError(t, err)
		require.True(t, applied, "step %s", step)
	}
}

func TestRejectedCommandLeavesStateUnchanged(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultProfile())
	before := engine.Status()

	for _, cmd := range []Command{CommandStop, CommandPause, CommandSkip} {
		applied, status, err := engine.Execute(cmd, 0)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, before, status)
	}
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("skip")
	require.NoError(t, err)
	assert.Equal(t, CommandSkip, cmd)

	_, err = ParseCommand("SKIP")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
