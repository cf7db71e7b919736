package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pomodoro/desktop/internal/model"
)

const dayLayout = "2006-01-02"

// HistoryRepository stores completed work phases.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Insert(ctx context.Context, record *model.PomodoroRecord) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO pomodoros (id, profile_name, count, duration_minutes, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.ProfileName,
		record.Count,
		record.DurationMinutes,
		formatTime(record.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert pomodoro: %w", err)
	}
	return nil
}

// List returns the most recent records first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]model.PomodoroRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, profile_name, count, duration_minutes, completed_at
		 FROM pomodoros
		 ORDER BY completed_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pomodoros: %w", err)
	}
	defer rows.Close()

	records := make([]model.PomodoroRecord, 0, limit)
	for rows.Next() {
		record, scanErr := scanPomodoroRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pomodoros: %w", err)
	}

	return records, nil
}

// CountByDay aggregates records per UTC calendar day, starting with the day
// containing since. Days without records are omitted.
func (r *HistoryRepository) CountByDay(ctx context.Context, since time.Time) ([]model.DayCount, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT substr(completed_at, 1, 10) AS day,
		        COALESCE(SUM(count), 0),
		        COALESCE(SUM(duration_minutes), 0)
		 FROM pomodoros
		 WHERE substr(completed_at, 1, 10) >= ?
		 GROUP BY day
		 ORDER BY day ASC`,
		since.UTC().Format(dayLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("count pomodoros by day: %w", err)
	}
	defer rows.Close()

	days := make([]model.DayCount, 0)
	for rows.Next() {
		var day model.DayCount
		if err := rows.Scan(&day.Date, &day.Pomodoros, &day.TotalMinutes); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day counts: %w", err)
	}

	return days, nil
}

func scanPomodoroRecord(s scanner) (*model.PomodoroRecord, error) {
	record := model.PomodoroRecord{}
	var completedAt string
	err := s.Scan(
		&record.ID,
		&record.ProfileName,
		&record.Count,
		&record.DurationMinutes,
		&completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan pomodoro: %w", err)
	}

	parsedCompletedAt, err := parseTime(completedAt)
	if err != nil {
		return nil, fmt.Errorf("parse pomodoro completed_at: %w", err)
	}
	record.CompletedAt = parsedCompletedAt
	return &record, nil
}
