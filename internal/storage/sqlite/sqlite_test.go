package sqlitestorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/pinmap/internal/database"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		b, err := New(Config{}, model.Board{Name: "test"}, nil)
		require.NoError(t, err)
		require.NoError(t, b.Init())
		t.Cleanup(func() { b.Close() })
		return b
	})
}

func TestDumpLoop_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pins.db")
	b, err := New(Config{DumpInterval: 10 * time.Millisecond, DumpPath: path}, model.Board{Name: "test"}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	_, err = b.CreatePin(context.Background(), 10, 20)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.Close())

	disk, err := database.GetSqliteDB(path)
	require.NoError(t, err)
	var pins []model.Pin
	require.NoError(t, disk.Find(&pins).Error)
	require.Len(t, pins, 1)
	assert.Equal(t, "Pin 1", pins[0].Name)

	// the final dump on close includes the flushed audit row
	var changes int64
	require.NoError(t, disk.Model(&model.PinChange{}).Count(&changes).Error)
	assert.Equal(t, int64(1), changes)
}
