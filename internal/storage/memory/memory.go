// Package memory keeps pins in process memory. Pins are lost on exit.
package memory

import (
	"context"
	"sync"

	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/pkg/core"
)

// Backend stores pins in a slice in creation order
type Backend struct {
	pins   []core.Pin
	nextID int64
	mu     sync.RWMutex
}

var _ storage.Backend = (*Backend)(nil)

// New creates a new memory backend
func New() *Backend {
	return &Backend{nextID: 1}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// ListPins returns a copy of all pins.
func (b *Backend) ListPins(_ context.Context) ([]core.Pin, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Pin, len(b.pins))
	copy(out, b.pins)
	return out, nil
}

// CreatePin appends a new pin with the next id.
func (b *Backend) CreatePin(_ context.Context, x, y float64) (core.Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	pin := core.Pin{ID: id, Name: storage.DefaultName(id), X: x, Y: y}
	b.pins = append(b.pins, pin)
	return pin, nil
}

// RenamePin sets the name of pin id.
func (b *Backend) RenamePin(_ context.Context, id int64, name string) (core.Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.pins {
		if b.pins[i].ID == id {
			b.pins[i].Name = name
			return b.pins[i], nil
		}
	}
	return core.Pin{}, storage.ErrPinNotFound
}
