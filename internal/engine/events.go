package engine

import (
	"time"

	"pomodoro/desktop/internal/model"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
)

// Reason names what caused a state change.
type Reason string

const (
	ReasonStart    Reason = "start"
	ReasonStop     Reason = "stop"
	ReasonPause    Reason = "pause"
	ReasonReset    Reason = "reset"
	ReasonSkip     Reason = "skip"
	ReasonComplete Reason = "complete"
	ReasonRestore  Reason = "restore"
	ReasonProfile  Reason = "profile"
)

// Event is delivered to listeners after every transition and on every
// running tick that does not complete the phase.
type Event struct {
	Type                    EventType
	Reason                  Reason
	From                    model.Phase
	To                      model.Phase
	Paused                  bool
	Elapsed                 time.Duration
	Remaining               time.Duration
	PhaseDuration           time.Duration
	CompletedWorkCycles     int
	TotalCompletedPomodoros int
	Version                 int
	Profile                 model.Profile
	At                      time.Time
}

// Listener observes engine events. OnEvent runs synchronously while the
// engine lock is held, so it must be quick and must not call the engine.
type Listener interface {
	OnEvent(Event)
}

type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}
