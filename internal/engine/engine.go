package engine

import (
	"sync"
	"time"

	"pomodoro/desktop/internal/clock"
	"pomodoro/desktop/internal/model"
)

// Config contains runtime options for the Engine.
type Config struct {
	// TickInterval is the expected spacing between ticks. It also bounds the
	// slack accepted when validating snapshots.
	TickInterval time.Duration
	// Ticker overrides the tick source; nil uses an IntervalTicker.
	Ticker TickSource
}

// Engine is the pomodoro state machine. All commands and ticks are
// serialized by a single mutex.
type Engine struct {
	mu      sync.Mutex
	clock   clock.Clock
	profile model.Profile
	options Config
	ticker  TickSource
	ticking bool
	closed  bool

	phase               model.Phase
	paused              bool
	phaseStartedAt      time.Time
	elapsedBeforePause  time.Duration
	completedWorkCycles int
	totalCompleted      int
	version             int

	listeners []Listener
	events    []chan Event
}

// Status is a read-only view of the engine at a point in time.
type Status struct {
	Phase                   model.Phase
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

// State collapses phase and pause flag into idle, running or paused.
func (status Status) State() string {
	switch {
	case status.Phase == model.PhaseIdle:
		return model.StatusIdle
	case status.Paused:
		return model.StatusPaused
	default:
		return model.StatusRunning
	}
}

// Commands returns the commands valid in this state.
func (status Status) Commands() []Command {
	return AllowedCommands(status.Phase, status.Paused)
}

// New creates an idle Engine.
func New(profile model.Profile, clk clock.Clock, options Config) (*Engine, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.System{}
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	ticker := options.Ticker
	if ticker == nil {
		ticker = NewIntervalTicker(options.TickInterval)
	}

	return &Engine{
		clock:   clk,
		profile: profile,
		options: options,
		ticker:  ticker,
		phase:   model.PhaseIdle,
		version: 1,
	}, nil
}

// ValidateProfile checks that every duration is positive and at least one
// work cycle precedes a long break.
func ValidateProfile(profile model.Profile) error {
	switch {
	case profile.WorkDuration <= 0:
		return &InvalidProfileError{Field: "workDuration", Reason: "must be positive"}
	case profile.ShortBreakDuration <= 0:
		return &InvalidProfileError{Field: "shortBreakDuration", Reason: "must be positive"}
	case profile.LongBreakDuration <= 0:
		return &InvalidProfileError{Field: "longBreakDuration", Reason: "must be positive"}
	case profile.CyclesBeforeLongBreak < 1:
		return &InvalidProfileError{Field: "cyclesBeforeLongBreak", Reason: "must be at least 1"}
	}
	return nil
}

// AddListener registers a synchronous observer.
func (engine *Engine) AddListener(listener Listener) {
	if listener == nil {
		return
	}
	engine.mu.Lock()
	engine.listeners = append(engine.listeners, listener)
	engine.mu.Unlock()
}

// Subscribe registers a new observer channel. Events are dropped for a
// subscriber whose buffer is full.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	if engine.closed {
		close(ch)
	} else {
		engine.events = append(engine.events, ch)
	}
	engine.mu.Unlock()
	return ch
}

func (engine *Engine) Start() bool { return engine.run(CommandStart) }
func (engine *Engine) Stop() bool  { return engine.run(CommandStop) }
func (engine *Engine) Pause() bool { return engine.run(CommandPause) }
func (engine *Engine) Reset() bool { return engine.run(CommandReset) }
func (engine *Engine) Skip() bool  { return engine.run(CommandSkip) }

func (engine *Engine) run(cmd Command) bool {
	applied, _, _ := engine.Execute(cmd, 0)
	return applied
}

// Execute applies cmd if it is valid for the current state. A command that
// is not valid is a no-op reported through the applied flag. A positive
// baseVersion must match the current version.
func (engine *Engine) Execute(cmd Command, baseVersion int) (bool, Status, error) {
	if _, err := ParseCommand(string(cmd)); err != nil {
		return false, engine.Status(), err
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	now := engine.clock.Now()

	if baseVersion > 0 && baseVersion != engine.version {
		return false, engine.statusLocked(now), ErrVersionConflict
	}
	if engine.closed || !Allowed(cmd, engine.phase, engine.paused) {
		return false, engine.statusLocked(now), nil
	}

	switch cmd {
	case CommandStart:
		engine.startLocked(now)
	case CommandStop:
		engine.stopLocked(now, ReasonStop)
	case CommandPause:
		engine.pauseLocked(now)
	case CommandReset:
		engine.completedWorkCycles = 0
		engine.stopLocked(now, ReasonReset)
	case CommandSkip:
		engine.advanceLocked(now, ReasonSkip, 0)
	}
	return true, engine.statusLocked(now), nil
}

// Can reports whether cmd would currently be applied.
func (engine *Engine) Can(cmd Command) bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return Allowed(cmd, engine.phase, engine.paused)
}

// Tick advances time-based bookkeeping. It performs at most one phase
// advance per call and is a no-op unless a phase is running.
func (engine *Engine) Tick() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed || engine.phase == model.PhaseIdle || engine.paused {
		return
	}

	now := engine.clock.Now()
	elapsed := engine.elapsedLocked(now)
	duration := engine.profile.DurationFor(engine.phase)
	if elapsed >= duration {
		engine.advanceLocked(now, ReasonComplete, elapsed-duration)
		return
	}
	engine.emitLocked(engine.eventLocked(EventTick, "", engine.phase, now))
}

// Status returns the current state.
func (engine *Engine) Status() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.statusLocked(engine.clock.Now())
}

// Profile returns the active profile.
func (engine *Engine) Profile() model.Profile {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.profile
}

// SetProfile replaces the profile. Only allowed while idle.
func (engine *Engine) SetProfile(profile model.Profile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.phase != model.PhaseIdle {
		return ErrNotIdle
	}
	engine.profile = profile
	if engine.completedWorkCycles >= profile.CyclesBeforeLongBreak {
		engine.completedWorkCycles = profile.CyclesBeforeLongBreak - 1
	}
	engine.transitionLocked(engine.clock.Now(), ReasonProfile, model.PhaseIdle)
	return nil
}

// Close stops ticking and closes subscriber channels. Commands after Close
// are no-ops.
func (engine *Engine) Close() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	engine.closed = true
	engine.stopTickingLocked()
	for _, ch := range engine.events {
		close(ch)
	}
	engine.events = nil
}

func (engine *Engine) startLocked(now time.Time) {
	from := engine.phase
	if engine.phase == model.PhaseIdle {
		engine.phase = model.PhaseWork
		engine.elapsedBeforePause = 0
	}
	engine.paused = false
	engine.phaseStartedAt = now
	engine.startTickingLocked()
	engine.transitionLocked(now, ReasonStart, from)
}

func (engine *Engine) stopLocked(now time.Time, reason Reason) {
	from := engine.phase
	engine.phase = model.PhaseIdle
	engine.paused = false
	engine.phaseStartedAt = time.Time{}
	engine.elapsedBeforePause = 0
	engine.stopTickingLocked()
	engine.transitionLocked(now, reason, from)
}

func (engine *Engine) pauseLocked(now time.Time) {
	engine.elapsedBeforePause = engine.elapsedLocked(now)
	engine.paused = true
	engine.stopTickingLocked()
	engine.transitionLocked(now, ReasonPause, engine.phase)
}

// advanceLocked moves to the phase that follows the current one. carry is
// the time already spent past the end of the completed phase.
func (engine *Engine) advanceLocked(now time.Time, reason Reason, carry time.Duration) {
	from := engine.phase
	next := model.PhaseWork
	if from == model.PhaseWork {
		engine.completedWorkCycles++
		if reason == ReasonComplete {
			engine.totalCompleted++
		}
		next = model.PhaseShortBreak
		if engine.completedWorkCycles%engine.profile.CyclesBeforeLongBreak == 0 {
			next = model.PhaseLongBreak
			engine.completedWorkCycles = 0
		}
	}

	engine.phase = next
	engine.phaseStartedAt = now
	if engine.profile.AutoStartNextPhase {
		engine.paused = false
		engine.elapsedBeforePause = carry
		engine.startTickingLocked()
	} else {
		engine.paused = true
		engine.elapsedBeforePause = 0
		engine.stopTickingLocked()
	}
	engine.transitionLocked(now, reason, from)
}

func (engine *Engine) elapsedLocked(now time.Time) time.Duration {
	if engine.phase == model.PhaseIdle {
		return 0
	}
	if engine.paused {
		return engine.elapsedBeforePause
	}
	live := now.Sub(engine.phaseStartedAt)
	if live < 0 {
		live = 0
	}
	return engine.elapsedBeforePause + live
}

func (engine *Engine) statusLocked(now time.Time) Status {
	phaseDuration := engine.profile.DurationFor(engine.phase)
	elapsed := engine.elapsedLocked(now)
	remaining := phaseDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Phase:                   engine.phase,
		Paused:                  engine.paused,
		Elapsed:                 elapsed,
		Remaining:               remaining,
		PhaseDuration:           phaseDuration,
		CompletedWorkCycles:     engine.completedWorkCycles,
		TotalCompletedPomodoros: engine.totalCompleted,
		Version:                 engine.version,
		Profile:                 engine.profile,
		At:                      now,
	}
}

func (engine *Engine) transitionLocked(now time.Time, reason Reason, from model.Phase) {
	engine.version++
	engine.emitLocked(engine.eventLocked(EventStateChange, reason, from, now))
}

func (engine *Engine) eventLocked(eventType EventType, reason Reason, from model.Phase, now time.Time) Event {
	status := engine.statusLocked(now)
	return Event{
		Type:                    eventType,
		Reason:                  reason,
		From:                    from,
		To:                      status.Phase,
		Paused:                  status.Paused,
		Elapsed:                 status.Elapsed,
		Remaining:               status.Remaining,
		PhaseDuration:           status.PhaseDuration,
		CompletedWorkCycles:     status.CompletedWorkCycles,
		TotalCompletedPomodoros: status.TotalCompletedPomodoros,
		Version:                 status.Version,
		Profile:                 status.Profile,
		At:                      now,
	}
}

func (engine *Engine) emitLocked(event Event) {
	for _, listener := range engine.listeners {
		listener.OnEvent(event)
	}
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func (engine *Engine) startTickingLocked() {
	if engine.ticking || engine.closed {
		return
	}
	engine.ticking = true
	engine.ticker.Start(engine.Tick)
}

func (engine *Engine) stopTickingLocked() {
	if !engine.ticking {
		return
	}
	engine.ticking = false
	engine.ticker.Stop()
}
