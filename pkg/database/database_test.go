package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/model"
)

func TestOpen_Memory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.NoError(t, Close(db))
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "radar.db")
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, db.Migrator().HasTable(&model.WatchItem{}))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
