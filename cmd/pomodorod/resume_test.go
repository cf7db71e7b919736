package main

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"pomodoro/desktop/internal/model"
)

func TestIsYes(t *testing.T) {
	for _, answer := range []string{"y", "Y", "yes", " YES \n"} {
		assert.True(t, isYes(answer), answer)
	}
	for _, answer := range []string{"", "n", "no", "yep", "1"} {
		assert.False(t, isYes(answer), answer)
	}
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "25:00", formatRemaining(25*time.Minute))
	assert.Equal(t, "00:01", formatRemaining(200*time.Millisecond))
	assert.Equal(t, "04:59", formatRemaining(4*time.Minute+59*time.Second))
	assert.Equal(t, "00:00", formatRemaining(-time.Second))
	assert.Equal(t, "90:00", formatRemaining(90*time.Minute))
}

func TestResumePrompt(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	assert.Equal(t,
		"Remaining time for work: 12:30. Resume pomodoro? [y/N] ",
		resumePrompt(model.PhaseWork, 12*time.Minute+30*time.Second))
}
