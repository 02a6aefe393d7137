// Package storagetest holds the behaviour every storage.Backend must show.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh, initialized backend returned by newBackend for each subtest.
func Run(t *testing.T, newBackend func(t *testing.T) storage.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("EmptyList", func(t *testing.T) {
		b := newBackend(t)
		pins, err := b.ListPins(ctx)
		require.NoError(t, err)
		assert.NotNil(t, pins)
		assert.Empty(t, pins)
	})

	t.Run("CreateAssignsIDAndDefaultName", func(t *testing.T) {
		b := newBackend(t)

		p1, err := b.CreatePin(ctx, 100, 200)
		require.NoError(t, err)
		p2, err := b.CreatePin(ctx, 300.5, 400.25)
		require.NoError(t, err)

		assert.Equal(t, core.Pin{ID: p1.ID, Name: storage.DefaultName(p1.ID), X: 100, Y: 200}, p1)
		assert.Equal(t, storage.DefaultName(p2.ID), p2.Name)
		assert.Greater(t, p2.ID, p1.ID)
	})

	t.Run("ListKeepsCreationOrder", func(t *testing.T) {
		b := newBackend(t)
		var want []core.Pin
		for i := 0; i < 3; i++ {
			p, err := b.CreatePin(ctx, float64(i), float64(i*10))
			require.NoError(t, err)
			want = append(want, p)
		}

		got, err := b.ListPins(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Rename", func(t *testing.T) {
		b := newBackend(t)
		p, err := b.CreatePin(ctx, 10, 20)
		require.NoError(t, err)

		renamed, err := b.RenamePin(ctx, p.ID, "Site Alpha")
		require.NoError(t, err)
		assert.Equal(t, "Site Alpha", renamed.Name)
		assert.Equal(t, p.X, renamed.X)

		got, err := b.ListPins(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Site Alpha", got[0].Name)
	})

	t.Run("RenameUnknown", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.RenamePin(ctx, 999, "x")
		assert.ErrorIs(t, err, storage.ErrPinNotFound)
	})

	t.Run("ConcurrentCreatesGetDistinctIDs", func(t *testing.T) {
		b := newBackend(t)

		var (
			mu  sync.Mutex
			ids = map[int64]bool{}
			wg  sync.WaitGroup
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p, err := b.CreatePin(ctx, float64(i), float64(i))
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				ids[p.ID] = true
				mu.Unlock()
			}(i)
		}
		wg.Wait()

		assert.Len(t, ids, 10)
		pins, err := b.ListPins(ctx)
		require.NoError(t, err)
		assert.Len(t, pins, 10)
	})
}
