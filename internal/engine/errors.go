package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIdle is returned by operations that require the engine to be idle.
	ErrNotIdle = errors.New("engine is not idle")
	// ErrVersionConflict indicates the caller acted on a stale state version.
	ErrVersionConflict = errors.New("engine state version conflict")
	ErrUnknownCommand  = errors.New("unknown command")
)

// InvalidProfileError reports a profile value that cannot drive the engine.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile: %s %s", e.Field, e.Reason)
}

// InvalidSnapshotError reports a snapshot that is structurally or
// semantically unusable. Hosts are expected to discard such snapshots.
type InvalidSnapshotError struct {
	Field  string
	Reason string
}

func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s %s", e.Field, e.Reason)
}
