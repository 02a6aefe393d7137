package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/pinmap/internal/config"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBoard = model.Board{Name: "pinmap", ImageURL: "/static/images/map.png", Width: 2000, Height: 7049}

func TestMigrate_SeedsBoardOnce(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)

	require.NoError(t, Migrate(db, testBoard))
	require.NoError(t, Migrate(db, testBoard))

	var boards []model.Board
	require.NoError(t, db.Find(&boards).Error)
	require.Len(t, boards, 1)
	assert.Equal(t, 7049.0, boards[0].Height)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db, testBoard))
	require.NoError(t, db.Create(&model.Pin{Name: "Pin 1", X: 1, Y: 2}).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	disk, err := GetSqliteDB(path)
	require.NoError(t, err)
	var pins []model.Pin
	require.NoError(t, disk.Find(&pins).Error)
	require.Len(t, pins, 1)
	assert.Equal(t, "Pin 1", pins[0].Name)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestManager_FallsBackToSQLite(t *testing.T) {
	m := NewManager(zerolog.Nop())

	// nothing listens on port 1
	err := m.Connect(config.DBConfig{Host: "127.0.0.1", Port: "1", Username: "u", Password: "p", Database: "d"})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	assert.Equal(t, "sqlite", m.DB.Dialector.Name())
	require.NoError(t, m.Setup(testBoard))

	m.SqliteFilePath = filepath.Join(t.TempDir(), "fallback.db")
	assert.NoError(t, m.DumpMemoryToDisk())
}
