package engine

import (
	"time"

	"pomodoro/desktop/internal/model"
)

// GetSnapshot exports the progress needed to resume after a restart. It is
// valid in every state; an idle engine exports only its counters.
func (engine *Engine) GetSnapshot() model.Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	now := engine.clock.Now()

	snapshot := model.Snapshot{
		Phase:                   engine.phase,
		Paused:                  engine.paused,
		WorkDuration:            engine.profile.WorkDuration,
		CompletedWorkCycles:     engine.completedWorkCycles,
		TotalCompletedPomodoros: engine.totalCompleted,
		ProfileName:             engine.profile.Name,
		TakenAt:                 now,
	}
	if !engine.phase.Active() {
		return snapshot
	}

	phaseDuration := engine.profile.DurationFor(engine.phase)
	elapsed := engine.elapsedLocked(now)
	if elapsed > phaseDuration {
		elapsed = phaseDuration
	}
	startedAt := now.Add(-elapsed)
	snapshot.StartedAt = &startedAt
	snapshot.Elapsed = elapsed
	snapshot.PhaseDuration = phaseDuration
	return snapshot
}

// LoadSnapshot restores progress from snapshot as of now. It is only valid
// while idle. An active phase is re-entered paused with the remaining time
// it had when exported; time spent while persisted is not counted.
func (engine *Engine) LoadSnapshot(snapshot model.Snapshot, now time.Time) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.phase != model.PhaseIdle {
		return ErrNotIdle
	}

	elapsed, err := engine.validateSnapshotLocked(snapshot)
	if err != nil {
		return err
	}

	engine.completedWorkCycles = snapshot.CompletedWorkCycles
	if engine.completedWorkCycles >= engine.profile.CyclesBeforeLongBreak {
		engine.completedWorkCycles = engine.profile.CyclesBeforeLongBreak - 1
	}
	engine.totalCompleted = snapshot.TotalCompletedPomodoros

	if snapshot.Phase.Active() {
		remaining := engine.remainingLocked(snapshot, elapsed)
		restored := engine.profile.DurationFor(snapshot.Phase) - remaining
		if restored < 0 {
			restored = 0
		}
		engine.phase = snapshot.Phase
		engine.paused = true
		engine.elapsedBeforePause = restored
		engine.phaseStartedAt = now.Add(-restored)
	}

	engine.transitionLocked(now, ReasonRestore, model.PhaseIdle)
	return nil
}

// PreviewSnapshot validates snapshot against the current profile and
// returns the time LoadSnapshot would leave in its phase. It changes nothing.
func (engine *Engine) PreviewSnapshot(snapshot model.Snapshot) (time.Duration, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	elapsed, err := engine.validateSnapshotLocked(snapshot)
	if err != nil {
		return 0, err
	}
	if !snapshot.Phase.Active() {
		return 0, nil
	}
	return engine.remainingLocked(snapshot, elapsed), nil
}

func (engine *Engine) remainingLocked(snapshot model.Snapshot, elapsed time.Duration) time.Duration {
	remaining := engine.recordedDurationLocked(snapshot) - elapsed
	if remaining < 0 {
		return 0
	}
	if current := engine.profile.DurationFor(snapshot.Phase); remaining > current {
		return current
	}
	return remaining
}

// validateSnapshotLocked returns the elapsed time the snapshot represents.
func (engine *Engine) validateSnapshotLocked(snapshot model.Snapshot) (time.Duration, error) {
	switch {
	case !snapshot.Phase.Valid():
		return 0, &InvalidSnapshotError{Field: "phase", Reason: "is not a known phase"}
	case snapshot.Phase == model.PhaseIdle && snapshot.Paused:
		return 0, &InvalidSnapshotError{Field: "paused", Reason: "cannot be set while idle"}
	case snapshot.Elapsed < 0:
		return 0, &InvalidSnapshotError{Field: "elapsed", Reason: "must not be negative"}
	case snapshot.WorkDuration < 0:
		return 0, &InvalidSnapshotError{Field: "workDuration", Reason: "must not be negative"}
	case snapshot.PhaseDuration < 0:
		return 0, &InvalidSnapshotError{Field: "phaseDuration", Reason: "must not be negative"}
	case snapshot.CompletedWorkCycles < 0:
		return 0, &InvalidSnapshotError{Field: "completedWorkCycles", Reason: "must not be negative"}
	case snapshot.CompletedWorkCycles > engine.profile.CyclesBeforeLongBreak:
		return 0, &InvalidSnapshotError{Field: "completedWorkCycles", Reason: "exceeds cycles before long break"}
	case snapshot.TotalCompletedPomodoros < 0:
		return 0, &InvalidSnapshotError{Field: "totalCompletedPomodoros", Reason: "must not be negative"}
	}

	if !snapshot.Phase.Active() {
		return 0, nil
	}
	if snapshot.WorkDuration == 0 {
		return 0, &InvalidSnapshotError{Field: "workDuration", Reason: "is required for an active phase"}
	}

	elapsed := snapshot.Elapsed
	if elapsed == 0 && snapshot.StartedAt != nil && !snapshot.TakenAt.IsZero() {
		elapsed = snapshot.TakenAt.Sub(*snapshot.StartedAt)
		if elapsed < 0 {
			return 0, &InvalidSnapshotError{Field: "startedAt", Reason: "is after takenAt"}
		}
	}
	if elapsed > engine.recordedDurationLocked(snapshot)+engine.options.TickInterval {
		return 0, &InvalidSnapshotError{Field: "elapsed", Reason: "exceeds the phase duration"}
	}
	return elapsed, nil
}

// recordedDurationLocked is the phase length the snapshot was taken under.
func (engine *Engine) recordedDurationLocked(snapshot model.Snapshot) time.Duration {
	if snapshot.PhaseDuration > 0 {
		return snapshot.PhaseDuration
	}
	if snapshot.Phase == model.PhaseWork {
		return snapshot.WorkDuration
	}
	return engine.profile.DurationFor(snapshot.Phase)
}
