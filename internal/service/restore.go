package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pomodoro/desktop/internal/engine"
	"pomodoro/desktop/internal/model"
	"pomodoro/desktop/internal/repository"
)

type RestoreOutcome string

const (
	RestoreNone      RestoreOutcome = "none"
	RestoreLoaded    RestoreOutcome = "loaded"
	RestoreStarted   RestoreOutcome = "started"
	RestoreDiscarded RestoreOutcome = "discarded"
	RestoreInvalid   RestoreOutcome = "invalid"
)

// RestoreOptions decides what happens to an interrupted phase.
// StartImmediately resumes without asking. Otherwise Confirm, when set, is
// asked whether to resume; a nil Confirm restores the phase paused.
type RestoreOptions struct {
	StartImmediately bool
	Confirm          func(phase model.Phase, remaining time.Duration) bool
}

// Restore consumes the stored snapshot. Unreadable or invalid snapshots are
// discarded and the engine stays idle. The stored snapshot is removed once
// it has been consumed.
func (s *TimerService) Restore(ctx context.Context, options RestoreOptions) (RestoreOutcome, error) {
	snapshot, err := s.snapshots.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.metrics.IncSnapshotRestore(string(RestoreNone))
		return RestoreNone, nil
	case errors.Is(err, repository.ErrCorrupt):
		return s.discardInvalid(ctx, err)
	case err != nil:
		return RestoreNone, fmt.Errorf("load snapshot: %w", err)
	}

	remaining, err := s.engine.PreviewSnapshot(*snapshot)
	if err != nil {
		var snapshotErr *engine.InvalidSnapshotError
		if errors.As(err, &snapshotErr) {
			return s.discardInvalid(ctx, err)
		}
		return RestoreNone, fmt.Errorf("check snapshot: %w", err)
	}

	outcome := RestoreLoaded
	if snapshot.Phase.Active() {
		switch {
		case options.StartImmediately:
			outcome = RestoreStarted
		case options.Confirm != nil:
			if options.Confirm(snapshot.Phase, remaining) {
				outcome = RestoreStarted
			} else {
				outcome = RestoreDiscarded
			}
		}
	}

	if outcome != RestoreDiscarded {
		if err := s.engine.LoadSnapshot(*snapshot, s.clock.Now()); err != nil {
			var snapshotErr *engine.InvalidSnapshotError
			if errors.As(err, &snapshotErr) {
				return s.discardInvalid(ctx, err)
			}
			return RestoreNone, fmt.Errorf("load snapshot into engine: %w", err)
		}
		if outcome == RestoreStarted {
			s.engine.Start()
		}
	}

	if err := s.snapshots.Delete(ctx); err != nil {
		s.logger.Printf("delete consumed snapshot: %v", err)
	}
	s.metrics.IncSnapshotRestore(string(outcome))
	s.logger.Printf("snapshot %s: phase=%s remaining=%s", outcome, snapshot.Phase, remaining)
	return outcome, nil
}

func (s *TimerService) discardInvalid(ctx context.Context, cause error) (RestoreOutcome, error) {
	s.logger.Printf("discarding snapshot: %v", cause)
	s.metrics.IncSnapshotRestore(string(RestoreInvalid))
	if err := s.snapshots.Delete(ctx); err != nil {
		s.logger.Printf("delete invalid snapshot: %v", err)
	}
	return RestoreInvalid, nil
}
