package model

import "time"

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusPaused  = "paused"
)

const (
	DefaultProfileName           = "default"
	DefaultWorkDuration          = 25 * time.Minute
	DefaultShortBreakDuration    = 5 * time.Minute
	DefaultLongBreakDuration     = 15 * time.Minute
	DefaultCyclesBeforeLongBreak = 4
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseWork, PhaseShortBreak, PhaseLongBreak:
		return true
	}
	return false
}

// Active reports whether p is a work or break phase.
func (p Phase) Active() bool {
	return p == PhaseWork || p == PhaseShortBreak || p == PhaseLongBreak
}

// Profile holds the durations and thresholds governing a pomodoro session.
type Profile struct {
	Name                  string        `json:"name"`
	WorkDuration          time.Duration `json:"workDuration"`
	ShortBreakDuration    time.Duration `json:"shortBreakDuration"`
	LongBreakDuration     time.Duration `json:"longBreakDuration"`
	CyclesBeforeLongBreak int           `json:"cyclesBeforeLongBreak"`
	AutoStartNextPhase    bool          `json:"autoStartNextPhase"`
}

func DefaultProfile() Profile {
	return Profile{
		Name:                  DefaultProfileName,
		WorkDuration:          DefaultWorkDuration,
		ShortBreakDuration:    DefaultShortBreakDuration,
		LongBreakDuration:     DefaultLongBreakDuration,
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
		AutoStartNextPhase:    true,
	}
}

// DurationFor returns the configured length of phase. Idle maps to the work
// duration, which is what Start would run next.
func (p Profile) DurationFor(phase Phase) time.Duration {
	switch phase {
	case PhaseShortBreak:
		return p.ShortBreakDuration
	case PhaseLongBreak:
		return p.LongBreakDuration
	default:
		return p.WorkDuration
	}
}

// Snapshot is a point-in-time export of engine progress. Elapsed is
// authoritative; StartedAt and TakenAt are only used when Elapsed is zero.
type Snapshot struct {
	Phase                   Phase         `json:"phase"`
	Paused                  bool          `json:"paused"`
	StartedAt               *time.Time    `json:"startedAt,omitempty"`
	Elapsed                 time.Duration `json:"elapsed"`
	WorkDuration            time.Duration `json:"workDuration"`
	PhaseDuration           time.Duration `json:"phaseDuration,omitempty"`
	CompletedWorkCycles     int           `json:"completedWorkCycles"`
	TotalCompletedPomodoros int           `json:"totalCompletedPomodoros"`
	ProfileName             string        `json:"profileName,omitempty"`
	TakenAt                 time.Time     `json:"takenAt"`
}

// PomodoroRecord is one completed work phase kept in the history.
type PomodoroRecord struct {
	ID              string    `json:"id"`
	ProfileName     string    `json:"profileName"`
	Count           int       `json:"count"`
	DurationMinutes int       `json:"durationMinutes"`
	CompletedAt     time.Time `json:"completedAt"`
}

// DayCount aggregates completed pomodoros for a single calendar day.
type DayCount struct {
	Date         string `json:"date"`
	Pomodoros    int    `json:"pomodoros"`
	TotalMinutes int    `json:"totalMinutes"`
}
