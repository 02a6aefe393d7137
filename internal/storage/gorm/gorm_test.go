package gormstorage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/OCAP2/pinmap/internal/database"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/internal/storage/storagetest"
	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)

	b := New(Dependencies{
		DB:            db,
		Board:         model.Board{Name: "test", Width: 2000, Height: 7049},
		FlushInterval: time.Hour,
	})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return newTestBackend(t)
	})
}

func TestCreatePin_StoresPosition(t *testing.T) {
	b := newTestBackend(t)
	p, err := b.CreatePin(context.Background(), 500, 1200)
	require.NoError(t, err)

	var row model.Pin
	require.NoError(t, b.DB().First(&row, p.ID).Error)
	xy, ok := row.Position.XY()
	require.True(t, ok)
	assert.Equal(t, 500.0, xy.X)
	assert.Equal(t, 1200.0, xy.Y)
}

func TestChanges_QueuedUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	p, err := b.CreatePin(ctx, 1, 2)
	require.NoError(t, err)
	_, err = b.RenamePin(ctx, p.ID, "Gate")
	require.NoError(t, err)

	changes, err := b.Changes(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, changes, "audit rows are written by the flush loop")
	assert.Equal(t, 2, b.changes.Len())

	require.NoError(t, b.Flush())

	changes, err = b.Changes(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, model.ActionCreate, changes[0].Action)
	assert.Equal(t, model.ActionRename, changes[1].Action)

	var payload core.Pin
	require.NoError(t, json.Unmarshal(changes[1].Payload, &payload))
	assert.Equal(t, "Gate", payload.Name)
}

func TestClose_FlushesPending(t *testing.T) {
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())

	p, err := b.CreatePin(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.PinChange{}).Where("pin_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRenamePin_UnknownLeavesNoChange(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.RenamePin(context.Background(), 5, "x")
	assert.ErrorIs(t, err, storage.ErrPinNotFound)
	assert.Zero(t, b.changes.Len())
}
