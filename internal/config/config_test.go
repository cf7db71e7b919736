package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/desktop/internal/model"
)

var envKeys = []string{
	"POMODORO_CONFIG", "LISTEN_ADDR", "DB_PATH", "SNAPSHOT_STORE", "SNAPSHOT_PATH",
	"TICK_INTERVAL", "CHECKPOINT_INTERVAL", "JWT_SECRET", "TOKEN_TTL_HOURS",
	"CONTROL_PASSWORD", "CONTROL_PASSWORD_HASH", "CORS_ORIGINS", "POMODORO_PROFILE",
	"POMODORO_WORK_MINUTES", "POMODORO_SHORT_BREAK_MINUTES", "POMODORO_LONG_BREAK_MINUTES",
	"POMODORO_CYCLES_BEFORE_LONG_BREAK", "POMODORO_AUTO_START",
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Addr, cfg.Addr)
	assert.Equal(t, SnapshotStoreSQLite, cfg.SnapshotStore)
	assert.Equal(t, model.DefaultProfile(), cfg.Profile)
	assert.Empty(t, cfg.ConfigPath)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadAppliesFileThenEnv(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `listen: 127.0.0.1:9000
db_path: /tmp/p.db
snapshot:
  store: file
  path: /tmp/snapshot.json
tick_interval: 250ms
checkpoint_interval: 1m
auth:
  control_password: hunter2
  token_ttl_hours: 2
profile:
  name: deep
  work_minutes: 50
  short_break_minutes: 10
  cycles_before_long_break: 2
  auto_start_next_phase: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9100")
	t.Setenv("POMODORO_LONG_BREAK_MINUTES", "20")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, "127.0.0.1:9100", cfg.Addr)
	assert.Equal(t, "/tmp/p.db", cfg.DBPath)
	assert.Equal(t, SnapshotStoreFile, cfg.SnapshotStore)
	assert.Equal(t, "/tmp/snapshot.json", cfg.SnapshotPath)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, time.Minute, cfg.CheckpointInterval)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, model.Profile{
		Name:                  "deep",
		WorkDuration:          50 * time.Minute,
		ShortBreakDuration:    10 * time.Minute,
		LongBreakDuration:     20 * time.Minute,
		CyclesBeforeLongBreak: 2,
		AutoStartNextPhase:    false,
	}, cfg.Profile)
}

func TestLoadUsesConfigEnvPath(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /tmp/env.db\n"), 0o600))
	t.Setenv("POMODORO_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "listen: [",
		"bad duration":  "tick_interval: soon\n",
		"unknown store": "snapshot:\n  store: redis\n",
		"zero tick":     "tick_interval: 0s\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			isolateEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvIgnoresMalformedValues(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TOKEN_TTL_HOURS", "many")
	t.Setenv("POMODORO_AUTO_START", "perhaps")
	t.Setenv("CORS_ORIGINS", " http://a , ,http://b ")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Profile.AutoStartNextPhase)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
}

func TestLoadGeneratesSecretWhenPasswordSet(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CONTROL_PASSWORD", "s3cret")

	first, err := Load("")
	require.NoError(t, err)
	second, err := Load("")
	require.NoError(t, err)

	assert.Len(t, first.JWTSecret, 64)
	assert.True(t, first.JWTSecretGenerated)
	assert.NotEqual(t, first.JWTSecret, second.JWTSecret)
}

func TestLoadKeepsConfiguredSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CONTROL_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.False(t, cfg.JWTSecretGenerated)
}

func TestValidateRequiresSecretWithPassword(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.JWTSecret)
	require.NoError(t, cfg.Validate())

	cfg.ControlPassword = "s3cret"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "configured"
	assert.NoError(t, cfg.Validate())
}
