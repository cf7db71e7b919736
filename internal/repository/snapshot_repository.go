package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pomodoro/desktop/internal/model"
)

// ErrCorrupt is returned when a stored record exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt record")

// SnapshotRepository keeps a single engine snapshot row in SQLite.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot model.Snapshot) error {
	var startedAt interface{}
	if snapshot.StartedAt != nil {
		startedAt = formatTime(*snapshot.StartedAt)
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO engine_snapshots (
			id, phase, paused, started_at, elapsed_ms, work_duration_ms, phase_duration_ms,
			completed_work_cycles, total_completed_pomodoros, profile_name, taken_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phase = excluded.phase,
			paused = excluded.paused,
			started_at = excluded.started_at,
			elapsed_ms = excluded.elapsed_ms,
			work_duration_ms = excluded.work_duration_ms,
			phase_duration_ms = excluded.phase_duration_ms,
			completed_work_cycles = excluded.completed_work_cycles,
			total_completed_pomodoros = excluded.total_completed_pomodoros,
			profile_name = excluded.profile_name,
			taken_at = excluded.taken_at`,
		string(snapshot.Phase),
		boolToInt(snapshot.Paused),
		startedAt,
		snapshot.Elapsed.Milliseconds(),
		snapshot.WorkDuration.Milliseconds(),
		snapshot.PhaseDuration.Milliseconds(),
		snapshot.CompletedWorkCycles,
		snapshot.TotalCompletedPomodoros,
		snapshot.ProfileName,
		formatTime(snapshot.TakenAt),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Load(ctx context.Context) (*model.Snapshot, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT phase, paused, started_at, elapsed_ms, work_duration_ms, phase_duration_ms,
		        completed_work_cycles, total_completed_pomodoros, profile_name, taken_at
		 FROM engine_snapshots
		 WHERE id = 1`,
	)

	var snapshot model.Snapshot
	var phase string
	var paused int
	var startedAt sql.NullString
	var elapsedMS, workMS, phaseMS int64
	var takenAt string
	err := row.Scan(
		&phase,
		&paused,
		&startedAt,
		&elapsedMS,
		&workMS,
		&phaseMS,
		&snapshot.CompletedWorkCycles,
		&snapshot.TotalCompletedPomodoros,
		&snapshot.ProfileName,
		&takenAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snapshot.Phase = model.Phase(phase)
	snapshot.Paused = paused != 0
	snapshot.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	snapshot.WorkDuration = time.Duration(workMS) * time.Millisecond
	snapshot.PhaseDuration = time.Duration(phaseMS) * time.Millisecond

	if startedAt.Valid {
		parsedStartedAt, parseErr := parseTime(startedAt.String)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: snapshot started_at: %v", ErrCorrupt, parseErr)
		}
		snapshot.StartedAt = &parsedStartedAt
	}
	parsedTakenAt, err := parseTime(takenAt)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot taken_at: %v", ErrCorrupt, err)
	}
	snapshot.TakenAt = parsedTakenAt

	return &snapshot, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM engine_snapshots WHERE id = 1`); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
