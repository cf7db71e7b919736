package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"pomodoro/desktop/internal/clock"
	"pomodoro/desktop/internal/engine"
	apperrors "pomodoro/desktop/internal/errors"
	"pomodoro/desktop/internal/metrics"
	"pomodoro/desktop/internal/model"
	"pomodoro/desktop/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	defaultStatsDays    = 7
	maxStatsDays        = 366
	eventBuffer         = 256
)

type HistoryStore interface {
	Insert(ctx context.Context, record *model.PomodoroRecord) error
	List(ctx context.Context, limit int) ([]model.PomodoroRecord, error)
	CountByDay(ctx context.Context, since time.Time) ([]model.DayCount, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, profile model.Profile) error
	GetByName(ctx context.Context, name string) (*model.Profile, error)
	GetActive(ctx context.Context) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	SetActive(ctx context.Context, name string) error
}

// SnapshotStore persists a single engine snapshot. Load returns
// repository.ErrNotFound when nothing is stored and repository.ErrCorrupt
// when the stored value cannot be decoded.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot model.Snapshot) error
	Load(ctx context.Context) (*model.Snapshot, error)
	Delete(ctx context.Context) error
}

type TimerOptions struct {
	Clock              clock.Clock
	Metrics            *metrics.Metrics
	Logger             *log.Logger
	CheckpointInterval time.Duration
}

// TimerService hosts the engine: it maps commands to API results, records
// completed work phases and keeps the snapshot store current.
type TimerService struct {
	engine    *engine.Engine
	history   HistoryStore
	profiles  ProfileStore
	snapshots SnapshotStore

	clock              clock.Clock
	metrics            *metrics.Metrics
	logger             *log.Logger
	checkpointInterval time.Duration
	events             <-chan engine.Event
}

type StateView struct {
	Phase                     string    `json:"phase"`
	Status                    string    `json:"status"`
	Paused                    bool      `json:"paused"`
	RemainingSeconds          int       `json:"remainingSeconds"`
	ElapsedSeconds            int       `json:"elapsedSeconds"`
	PhaseDurationSeconds      int       `json:"phaseDurationSeconds"`
	WorkDurationSeconds       int       `json:"workDurationSeconds"`
	ShortBreakDurationSeconds int       `json:"shortBreakDurationSeconds"`
	LongBreakDurationSeconds  int       `json:"longBreakDurationSeconds"`
	CyclesBeforeLongBreak     int       `json:"cyclesBeforeLongBreak"`
	CompletedWorkCycles       int       `json:"completedWorkCycles"`
	TotalCompletedPomodoros   int       `json:"totalCompletedPomodoros"`
	ProfileName               string    `json:"profileName"`
	AutoStartNextPhase        bool      `json:"autoStartNextPhase"`
	AllowedCommands           []string  `json:"allowedCommands"`
	Version                   int       `json:"version"`
	ServerTime                time.Time `json:"serverTime"`
}

type CommandResult struct {
	Applied bool      `json:"applied"`
	State   StateView `json:"state"`
}

type ProfileView struct {
	Name                      string `json:"name"`
	WorkDurationSeconds       int    `json:"workDurationSeconds"`
	ShortBreakDurationSeconds int    `json:"shortBreakDurationSeconds"`
	LongBreakDurationSeconds  int    `json:"longBreakDurationSeconds"`
	CyclesBeforeLongBreak     int    `json:"cyclesBeforeLongBreak"`
	AutoStartNextPhase        bool   `json:"autoStartNextPhase"`
	Active                    bool   `json:"active"`
}

// ProfileInput changes the active profile. Zero fields keep the value of the
// stored profile with the same name, or of the current profile.
type ProfileInput struct {
	Name                      string
	WorkDurationSeconds       int
	ShortBreakDurationSeconds int
	LongBreakDurationSeconds  int
	CyclesBeforeLongBreak     int
	AutoStartNextPhase        *bool
}

type StatsView struct {
	Days           []model.DayCount `json:"days"`
	TotalPomodoros int              `json:"totalPomodoros"`
	TotalMinutes   int              `json:"totalMinutes"`
	Today          int              `json:"today"`
}

func NewTimerService(
	eng *engine.Engine,
	history HistoryStore,
	profiles ProfileStore,
	snapshots SnapshotStore,
	options TimerOptions,
) *TimerService {
	if options.Clock == nil {
		options.Clock = clock.System{}
	}
	if options.Logger == nil {
		options.Logger = log.New(io.Discard, "", 0)
	}

	return &TimerService{
		engine:             eng,
		history:            history,
		profiles:           profiles,
		snapshots:          snapshots,
		clock:              options.Clock,
		metrics:            options.Metrics,
		logger:             options.Logger,
		checkpointInterval: options.CheckpointInterval,
		events:             eng.Subscribe(eventBuffer),
	}
}

// ResolveActiveProfile returns the stored active profile. When none is
// stored, fallback is saved and activated.
func ResolveActiveProfile(ctx context.Context, profiles ProfileStore, fallback model.Profile) (model.Profile, error) {
	active, err := profiles.GetActive(ctx)
	if err == nil {
		if validateErr := engine.ValidateProfile(*active); validateErr == nil {
			return *active, nil
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, fmt.Errorf("get active profile: %w", err)
	}

	if err := engine.ValidateProfile(fallback); err != nil {
		return model.Profile{}, err
	}
	if err := profiles.Upsert(ctx, fallback); err != nil {
		return model.Profile{}, err
	}
	if err := profiles.SetActive(ctx, fallback.Name); err != nil {
		return model.Profile{}, err
	}
	return fallback, nil
}

func (s *TimerService) GetState(_ context.Context) *StateView {
	view := toStateView(s.engine.Status())
	return &view
}

// Execute applies the named command. A command that is not valid in the
// current state is reported with Applied false rather than as an error.
func (s *TimerService) Execute(_ context.Context, name string, baseVersion int) (*CommandResult, *apperrors.APIError) {
	cmd, err := engine.ParseCommand(name)
	if err != nil {
		return nil, apperrors.BadRequest("invalid_command", fmt.Sprintf("unknown command %q", name))
	}
	if baseVersion < 0 {
		return nil, apperrors.BadRequest("invalid_base_version", "baseVersion must not be negative")
	}

	applied, status, err := s.engine.Execute(cmd, baseVersion)
	view := toStateView(status)
	if errors.Is(err, engine.ErrVersionConflict) {
		return nil, apperrors.Conflict("state_conflict", "state changed since baseVersion", map[string]interface{}{
			"state": view,
		})
	}
	if err != nil {
		return nil, apperrors.Internal("failed to apply command")
	}
	return &CommandResult{Applied: applied, State: view}, nil
}

func (s *TimerService) UpdateProfile(ctx context.Context, input ProfileInput) (*StateView, *apperrors.APIError) {
	if input.WorkDurationSeconds < 0 || input.ShortBreakDurationSeconds < 0 ||
		input.LongBreakDurationSeconds < 0 || input.CyclesBeforeLongBreak < 0 {
		return nil, apperrors.BadRequest("invalid_profile", "durations and cycles must be positive")
	}

	current := s.engine.Profile()
	base := current
	if input.Name != "" && input.Name != current.Name {
		stored, err := s.profiles.GetByName(ctx, input.Name)
		switch {
		case err == nil:
			base = *stored
		case errors.Is(err, repository.ErrNotFound):
			base.Name = input.Name
		default:
			return nil, apperrors.Internal("failed to read profile")
		}
	}

	profile := base
	if input.WorkDurationSeconds > 0 {
		profile.WorkDuration = time.Duration(input.WorkDurationSeconds) * time.Second
	}
	if input.ShortBreakDurationSeconds > 0 {
		profile.ShortBreakDuration = time.Duration(input.ShortBreakDurationSeconds) * time.Second
	}
	if input.LongBreakDurationSeconds > 0 {
		profile.LongBreakDuration = time.Duration(input.LongBreakDurationSeconds) * time.Second
	}
	if input.CyclesBeforeLongBreak > 0 {
		profile.CyclesBeforeLongBreak = input.CyclesBeforeLongBreak
	}
	if input.AutoStartNextPhase != nil {
		profile.AutoStartNextPhase = *input.AutoStartNextPhase
	}

	if err := s.engine.SetProfile(profile); err != nil {
		var profileErr *engine.InvalidProfileError
		switch {
		case errors.As(err, &profileErr):
			apiErr := apperrors.BadRequest("invalid_profile", profileErr.Error())
			apiErr.Details = map[string]string{"field": profileErr.Field}
			return nil, apiErr
		case errors.Is(err, engine.ErrNotIdle):
			view := toStateView(s.engine.Status())
			return nil, apperrors.Conflict("engine_busy", "profile can only change while idle", map[string]interface{}{
				"state": view,
			})
		default:
			return nil, apperrors.Internal("failed to change profile")
		}
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger.Printf("save profile %s: %v", profile.Name, err)
		return nil, apperrors.Internal("failed to save profile")
	}
	if err := s.profiles.SetActive(ctx, profile.Name); err != nil {
		s.logger.Printf("activate profile %s: %v", profile.Name, err)
		return nil, apperrors.Internal("failed to activate profile")
	}

	view := toStateView(s.engine.Status())
	return &view, nil
}

func (s *TimerService) ListProfiles(ctx context.Context) ([]ProfileView, *apperrors.APIError) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list profiles")
	}

	active := s.engine.Profile().Name
	views := make([]ProfileView, 0, len(profiles))
	for _, profile := range profiles {
		view := toProfileView(profile)
		view.Active = profile.Name == active
		views = append(views, view)
	}
	return views, nil
}

func (s *TimerService) GetHistory(ctx context.Context, limit int) ([]model.PomodoroRecord, *apperrors.APIError) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to get history")
	}
	return records, nil
}

// GetStats returns one entry per UTC day for the last days days, oldest
// first, including days without pomodoros.
func (s *TimerService) GetStats(ctx context.Context, days int) (*StatsView, *apperrors.APIError) {
	if days <= 0 || days > maxStatsDays {
		days = defaultStatsDays
	}

	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	counts, err := s.history.CountByDay(ctx, since)
	if err != nil {
		return nil, apperrors.Internal("failed to get stats")
	}
	byDate := make(map[string]model.DayCount, len(counts))
	for _, count := range counts {
		byDate[count.Date] = count
	}

	stats := StatsView{Days: make([]model.DayCount, 0, days)}
	for day := since; !day.After(today); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		count, ok := byDate[date]
		if !ok {
			count = model.DayCount{Date: date}
		}
		stats.Days = append(stats.Days, count)
		stats.TotalPomodoros += count.Pomodoros
		stats.TotalMinutes += count.TotalMinutes
	}
	if len(stats.Days) > 0 {
		stats.Today = stats.Days[len(stats.Days)-1].Pomodoros
	}
	return &stats, nil
}

// Run records completed work phases and writes snapshots after every state
// change and every checkpoint interval. It returns when ctx is done or the
// engine is closed.
func (s *TimerService) Run(ctx context.Context) error {
	var checkpoints <-chan time.Time
	if s.checkpointInterval > 0 {
		ticker := time.NewTicker(s.checkpointInterval)
		defer ticker.Stop()
		checkpoints = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-s.events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, event)
		case <-checkpoints:
			if err := s.Checkpoint(ctx); err != nil {
				s.logger.Printf("checkpoint: %v", err)
			}
		}
	}
}

func (s *TimerService) handleEvent(ctx context.Context, event engine.Event) {
	if event.Type != engine.EventStateChange {
		return
	}

	if event.Reason == engine.ReasonComplete && event.From == model.PhaseWork {
		record := model.PomodoroRecord{
			ID:              uuid.NewString(),
			ProfileName:     event.Profile.Name,
			Count:           1,
			DurationMinutes: int(math.Round(event.Profile.WorkDuration.Minutes())),
			CompletedAt:     event.At.UTC(),
		}
		if err := s.history.Insert(ctx, &record); err != nil {
			s.logger.Printf("record pomodoro: %v", err)
		}
	}

	if err := s.Checkpoint(ctx); err != nil {
		s.logger.Printf("checkpoint after %s: %v", event.Reason, err)
	}
}

// Checkpoint writes the current snapshot to the store.
func (s *TimerService) Checkpoint(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.engine.GetSnapshot()); err != nil {
		s.metrics.IncCheckpointFailure()
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Shutdown writes a final snapshot and closes the engine.
func (s *TimerService) Shutdown(ctx context.Context) error {
	err := s.Checkpoint(ctx)
	s.engine.Close()
	return err
}

func toStateView(status engine.Status) StateView {
	commands := status.Commands()
	allowed := make([]string, 0, len(commands))
	for _, cmd := range commands {
		allowed = append(allowed, string(cmd))
	}

	return StateView{
		Phase:                     string(status.Phase),
		Status:                    status.State(),
		Paused:                    status.Paused,
		RemainingSeconds:          int(math.Ceil(status.Remaining.Seconds())),
		ElapsedSeconds:            int(status.Elapsed / time.Second),
		PhaseDurationSeconds:      seconds(status.PhaseDuration),
		WorkDurationSeconds:       seconds(status.Profile.WorkDuration),
		ShortBreakDurationSeconds: seconds(status.Profile.ShortBreakDuration),
		LongBreakDurationSeconds:  seconds(status.Profile.LongBreakDuration),
		CyclesBeforeLongBreak:     status.Profile.CyclesBeforeLongBreak,
		CompletedWorkCycles:       status.CompletedWorkCycles,
		TotalCompletedPomodoros:   status.TotalCompletedPomodoros,
		ProfileName:               status.Profile.Name,
		AutoStartNextPhase:        status.Profile.AutoStartNextPhase,
		AllowedCommands:           allowed,
		Version:                   status.Version,
		ServerTime:                status.At,
	}
}

func toProfileView(profile model.Profile) ProfileView {
	return ProfileView{
		Name:                      profile.Name,
		WorkDurationSeconds:       seconds(profile.WorkDuration),
		ShortBreakDurationSeconds: seconds(profile.ShortBreakDuration),
		LongBreakDurationSeconds:  seconds(profile.LongBreakDuration),
		CyclesBeforeLongBreak:     profile.CyclesBeforeLongBreak,
		AutoStartNextPhase:        profile.AutoStartNextPhase,
	}
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
