package database

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ConnectSQLiteAndSetup(t *testing.T) {
	var logs bytes.Buffer
	m := NewManager(zerolog.New(&logs))

	path := filepath.Join(t.TempDir(), "acmi.db")
	require.NoError(t, m.ConnectSQLite(path))
	t.Cleanup(func() { m.Close() })

	require.NoError(t, m.Setup())

	for _, table := range []any{&model.Recording{}, &model.Object{}, &model.ObjectState{}, &model.Event{}} {
		assert.True(t, m.DB.Migrator().HasTable(table))
	}
	assert.Contains(t, logs.String(), "Using local SQLite DB")
	assert.Contains(t, logs.String(), "Database setup complete")
}

func TestManager_SetupWithoutConnection(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup())
	assert.NoError(t, m.Close())
}

func TestOpenSQLite_InMemory(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	rec := model.Recording{Title: "Red Flag"}
	require.NoError(t, db.Create(&rec).Error)

	var got model.Recording
	require.NoError(t, db.First(&got, rec.ID).Error)
	assert.Equal(t, "Red Flag", got.Title)
}

func TestManager_ConnectPostgresUnreachable(t *testing.T) {
	m := NewManager(zerolog.Nop())
	err := m.ConnectPostgres(configForUnreachablePostgres())
	assert.ErrorContains(t, err, "postgres")
}

func configForUnreachablePostgres() config.DBConfig {
	return config.DBConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "acmi",
	}
}
