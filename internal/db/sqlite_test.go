package db

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/desktop/migrations"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "pomodoro.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database, migrations.FS))
	require.NoError(t, RunMigrations(database, migrations.FS))

	for _, table := range []string{"profiles", "pomodoros", "engine_snapshots"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var applied int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestRunMigrationsRollsBackFailedFile(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "pomodoro.db"))
	require.NoError(t, err)
	defer database.Close()

	broken := fstest.MapFS{
		"0001_ok.sql":     {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY);`)},
		"0002_broken.sql": {Data: []byte(`CREATE TABLE nope (`)},
		"README.md":       {Data: []byte(`not a migration`)},
	}

	err = RunMigrations(database, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_broken.sql")

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPendingMigrations(t *testing.T) {
	database, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer database.Close()

	fsys := fstest.MapFS{
		"0002_second.sql": {Data: []byte(`CREATE TABLE b (id INTEGER);`)},
		"0001_first.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"notes.txt":       {Data: []byte(`ignored`)},
	}

	pending, err := PendingMigrations(database, fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_first.sql", "0002_second.sql"}, pending)

	require.NoError(t, RunMigrations(database, fsys))

	pending, err = PendingMigrations(database, fsys)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
