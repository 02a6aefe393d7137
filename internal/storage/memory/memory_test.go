package memory

import (
	"context"
	"testing"

	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		b := New()
		require.NoError(t, b.Init())
		t.Cleanup(func() { b.Close() })
		return b
	})
}

func TestIDsStartAtOne(t *testing.T) {
	b := New()
	p, err := b.CreatePin(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "Pin 1", p.Name)
}

func TestListPins_ReturnsCopy(t *testing.T) {
	b := New()
	_, err := b.CreatePin(context.Background(), 1, 1)
	require.NoError(t, err)

	pins, _ := b.ListPins(context.Background())
	pins[0].Name = "mutated"

	again, _ := b.ListPins(context.Background())
	assert.Equal(t, "Pin 1", again[0].Name)
}
