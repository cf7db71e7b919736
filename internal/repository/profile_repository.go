package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pomodoro/desktop/internal/model"
)

// ProfileRepository stores named profiles. At most one is marked active.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert inserts profile or replaces the stored durations of the profile
// with the same name. The active flag is left unchanged.
func (r *ProfileRepository) Upsert(ctx context.Context, profile model.Profile) error {
	now := formatTime(time.Now())
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO profiles (
			name, work_seconds, short_break_seconds, long_break_seconds,
			cycles_before_long_break, auto_start_next_phase, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			work_seconds = excluded.work_seconds,
			short_break_seconds = excluded.short_break_seconds,
			long_break_seconds = excluded.long_break_seconds,
			cycles_before_long_break = excluded.cycles_before_long_break,
			auto_start_next_phase = excluded.auto_start_next_phase,
			updated_at = excluded.updated_at`,
		profile.Name,
		durationSeconds(profile.WorkDuration),
		durationSeconds(profile.ShortBreakDuration),
		durationSeconds(profile.LongBreakDuration),
		profile.CyclesBeforeLongBreak,
		boolToInt(profile.AutoStartNextPhase),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByName(ctx context.Context, name string) (*model.Profile, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT name, work_seconds, short_break_seconds, long_break_seconds,
		        cycles_before_long_break, auto_start_next_phase
		 FROM profiles
		 WHERE name = ?`,
		name,
	)
	return scanProfile(row)
}

func (r *ProfileRepository) GetActive(ctx context.Context) (*model.Profile, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT name, work_seconds, short_break_seconds, long_break_seconds,
		        cycles_before_long_break, auto_start_next_phase
		 FROM profiles
		 WHERE is_active = 1
		 LIMIT 1`,
	)
	return scanProfile(row)
}

func (r *ProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT name, work_seconds, short_break_seconds, long_break_seconds,
		        cycles_before_long_break, auto_start_next_phase
		 FROM profiles
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0)
	for rows.Next() {
		profile, scanErr := scanProfile(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// SetActive marks name as the active profile and clears the flag on every
// other profile.
func (r *ProfileRepository) SetActive(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE profiles SET is_active = 1, updated_at = ? WHERE name = ?`,
		formatTime(time.Now()),
		name,
	)
	if err != nil {
		return fmt.Errorf("activate profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate profile: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 0 WHERE name <> ?`, name); err != nil {
		return fmt.Errorf("deactivate profiles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanProfile(s scanner) (*model.Profile, error) {
	var profile model.Profile
	var workSeconds, shortSeconds, longSeconds int64
	var autoStart int
	err := s.Scan(
		&profile.Name,
		&workSeconds,
		&shortSeconds,
		&longSeconds,
		&profile.CyclesBeforeLongBreak,
		&autoStart,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	profile.WorkDuration = time.Duration(workSeconds) * time.Second
	profile.ShortBreakDuration = time.Duration(shortSeconds) * time.Second
	profile.LongBreakDuration = time.Duration(longSeconds) * time.Second
	profile.AutoStartNextPhase = autoStart != 0
	return &profile, nil
}

func durationSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
