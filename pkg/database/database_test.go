package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", cfg.DSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyPragmas(db))
	return db
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty path", func(c *Config) { c.DatabasePath = "" }},
		{"zero connections", func(c *Config) { c.MaxConnections = 0 }},
		{"zero lifetime", func(c *Config) { c.ConnMaxLifetime = 0 }},
		{"zero idle time", func(c *Config) { c.ConnMaxIdleTime = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMigrationManager_ApplyMigrations(t *testing.T) {
	db := openTestDB(t)
	mm := NewMigrationManager(db)

	require.NoError(t, mm.ApplyMigrations())

	versions, err := mm.AppliedVersions()
	require.NoError(t, err)
	assert.Equal(t, []string{"001"}, versions)

	require.NoError(t, NewSchemaValidator(db).Validate())
}

func TestMigrationManager_Idempotent(t *testing.T) {
	db := openTestDB(t)
	mm := NewMigrationManager(db)

	require.NoError(t, mm.ApplyMigrations())
	require.NoError(t, mm.ApplyMigrations())

	versions, err := mm.AppliedVersions()
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestSchemaValidator_MissingTables(t *testing.T) {
	db := openTestDB(t)

	err := NewSchemaValidator(db).ValidateTablesExist()
	assert.Error(t, err)
}

func TestSchemaValidator_StatusConstraint(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationManager(db).ApplyMigrations())

	_, err := db.Exec(`INSERT INTO sessions (id, status) VALUES ('s1', 'bogus')`)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO sessions (id) VALUES ('s2')`)
	assert.NoError(t, err)
}
