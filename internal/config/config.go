package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pomodoro/desktop/internal/model"
)

const (
	SnapshotStoreSQLite = "sqlite"
	SnapshotStoreFile   = "file"
)

type Config struct {
	ConfigPath          string
	Addr                string
	DBPath              string
	SnapshotStore       string
	SnapshotPath        string
	TickInterval        time.Duration
	CheckpointInterval  time.Duration
	JWTSecret           string
	JWTSecretGenerated  bool
	TokenTTL            time.Duration
	ControlPassword     string
	ControlPasswordHash string
	CORSOrigins         []string
	Profile             model.Profile
}

// FileConfig represents supported YAML config overrides.
type FileConfig struct {
	Listen             string            `yaml:"listen"`
	DBPath             string            `yaml:"db_path"`
	Snapshot           FileSnapshot      `yaml:"snapshot"`
	TickInterval       string            `yaml:"tick_interval"`
	CheckpointInterval string            `yaml:"checkpoint_interval"`
	Auth               FileAuth          `yaml:"auth"`
	CORSOrigins        []string          `yaml:"cors_origins"`
	Profile            FileProfileConfig `yaml:"profile"`
}

type FileSnapshot struct {
	Store string `yaml:"store"`
	Path  string `yaml:"path"`
}

type FileAuth struct {
	JWTSecret           string `yaml:"jwt_secret"`
	TokenTTLHours       int    `yaml:"token_ttl_hours"`
	ControlPassword     string `yaml:"control_password"`
	ControlPasswordHash string `yaml:"control_password_hash"`
}

type FileProfileConfig struct {
	Name                  string `yaml:"name"`
	WorkMinutes           int    `yaml:"work_minutes"`
	ShortBreakMinutes     int    `yaml:"short_break_minutes"`
	LongBreakMinutes      int    `yaml:"long_break_minutes"`
	CyclesBeforeLongBreak int    `yaml:"cycles_before_long_break"`
	AutoStartNextPhase    *bool  `yaml:"auto_start_next_phase"`
}

func DefaultConfig() Config {
	return Config{
		Addr:               "127.0.0.1:8765",
		DBPath:             "./data/pomodoro.db",
		SnapshotStore:      SnapshotStoreSQLite,
		SnapshotPath:       "./data/snapshot.json",
		TickInterval:       time.Second,
		CheckpointInterval: 30 * time.Second,
		TokenTTL:           72 * time.Hour,
		CORSOrigins:        []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		Profile:            model.DefaultProfile(),
	}
}

// DefaultPath is <user config dir>/pomodoro/config.yaml, or empty when the
// user config dir cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pomodoro", "config.yaml")
}

// Load applies, in order, defaults, the YAML file and environment variables.
// An explicit path (argument or POMODORO_CONFIG) must exist; the default
// path is optional.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := true
	if path == "" {
		path = getEnv("POMODORO_CONFIG", "")
	}
	if path == "" {
		explicit = false
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			cfg.ConfigPath = path
			var fileCfg FileConfig
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := applyFileConfig(&cfg, fileCfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if cfg.AuthEnabled() && cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return cfg, err
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretGenerated = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFileConfig(cfg *Config, fileCfg FileConfig) error {
	if fileCfg.Listen != "" {
		cfg.Addr = fileCfg.Listen
	}
	if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	}
	if fileCfg.Snapshot.Store != "" {
		cfg.SnapshotStore = fileCfg.Snapshot.Store
	}
	if fileCfg.Snapshot.Path != "" {
		cfg.SnapshotPath = fileCfg.Snapshot.Path
	}
	if fileCfg.TickInterval != "" {
		interval, err := time.ParseDuration(fileCfg.TickInterval)
		if err != nil {
			return fmt.Errorf("tick_interval: %w", err)
		}
		cfg.TickInterval = interval
	}
	if fileCfg.CheckpointInterval != "" {
		interval, err := time.ParseDuration(fileCfg.CheckpointInterval)
		if err != nil {
			return fmt.Errorf("checkpoint_interval: %w", err)
		}
		cfg.CheckpointInterval = interval
	}
	if fileCfg.Auth.JWTSecret != "" {
		cfg.JWTSecret = fileCfg.Auth.JWTSecret
	}
	if fileCfg.Auth.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(fileCfg.Auth.TokenTTLHours) * time.Hour
	}
	if fileCfg.Auth.ControlPassword != "" {
		cfg.ControlPassword = fileCfg.Auth.ControlPassword
	}
	if fileCfg.Auth.ControlPasswordHash != "" {
		cfg.ControlPasswordHash = fileCfg.Auth.ControlPasswordHash
	}
	if len(fileCfg.CORSOrigins) > 0 {
		cfg.CORSOrigins = fileCfg.CORSOrigins
	}

	profile := fileCfg.Profile
	if profile.Name != "" {
		cfg.Profile.Name = profile.Name
	}
	if profile.WorkMinutes > 0 {
		cfg.Profile.WorkDuration = time.Duration(profile.WorkMinutes) * time.Minute
	}
	if profile.ShortBreakMinutes > 0 {
		cfg.Profile.ShortBreakDuration = time.Duration(profile.ShortBreakMinutes) * time.Minute
	}
	if profile.LongBreakMinutes > 0 {
		cfg.Profile.LongBreakDuration = time.Duration(profile.LongBreakMinutes) * time.Minute
	}
	if profile.CyclesBeforeLongBreak > 0 {
		cfg.Profile.CyclesBeforeLongBreak = profile.CyclesBeforeLongBreak
	}
	if profile.AutoStartNextPhase != nil {
		cfg.Profile.AutoStartNextPhase = *profile.AutoStartNextPhase
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Addr = getEnv("LISTEN_ADDR", cfg.Addr)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.SnapshotStore = getEnv("SNAPSHOT_STORE", cfg.SnapshotStore)
	cfg.SnapshotPath = getEnv("SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.TickInterval = getEnvDuration("TICK_INTERVAL", cfg.TickInterval)
	cfg.CheckpointInterval = getEnvDuration("CHECKPOINT_INTERVAL", cfg.CheckpointInterval)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = time.Duration(getEnvInt("TOKEN_TTL_HOURS", int(cfg.TokenTTL/time.Hour))) * time.Hour
	cfg.ControlPassword = getEnv("CONTROL_PASSWORD", cfg.ControlPassword)
	cfg.ControlPasswordHash = getEnv("CONTROL_PASSWORD_HASH", cfg.ControlPasswordHash)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.Profile.Name = getEnv("POMODORO_PROFILE", cfg.Profile.Name)
	cfg.Profile.WorkDuration = getEnvMinutes("POMODORO_WORK_MINUTES", cfg.Profile.WorkDuration)
	cfg.Profile.ShortBreakDuration = getEnvMinutes("POMODORO_SHORT_BREAK_MINUTES", cfg.Profile.ShortBreakDuration)
	cfg.Profile.LongBreakDuration = getEnvMinutes("POMODORO_LONG_BREAK_MINUTES", cfg.Profile.LongBreakDuration)
	cfg.Profile.CyclesBeforeLongBreak = getEnvInt("POMODORO_CYCLES_BEFORE_LONG_BREAK", cfg.Profile.CyclesBeforeLongBreak)
	cfg.Profile.AutoStartNextPhase = getEnvBool("POMODORO_AUTO_START", cfg.Profile.AutoStartNextPhase)
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch c.SnapshotStore {
	case SnapshotStoreSQLite:
	case SnapshotStoreFile:
		if c.SnapshotPath == "" {
			return fmt.Errorf("snapshot.path is required for the file store")
		}
	default:
		return fmt.Errorf("snapshot.store must be %q or %q, got %q", SnapshotStoreSQLite, SnapshotStoreFile, c.SnapshotStore)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("checkpoint_interval must not be negative")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl_hours must be positive")
	}
	if c.Profile.Name == "" {
		return fmt.Errorf("profile.name is required")
	}
	if c.AuthEnabled() && c.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when a control password is set")
	}
	return nil
}

// randomSecret signs tokens for this process only when no secret is
// configured; tokens do not survive a restart.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// AuthEnabled reports whether a control password has been configured.
func (c Config) AuthEnabled() bool {
	return c.ControlPassword != "" || c.ControlPasswordHash != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvMinutes(key string, fallback time.Duration) time.Duration {
	minutes := getEnvInt(key, 0)
	if minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
