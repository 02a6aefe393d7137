// Package storage defines the persistence contract of the pin server.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/pkg/core"
)

// ErrPinNotFound is returned by RenamePin for an id no pin has.
var ErrPinNotFound = errors.New("pin not found")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// ListPins returns every pin in creation order.
	ListPins(ctx context.Context) ([]core.Pin, error)

	// CreatePin stores a pin at image pixel (x, y), assigns the next id and names it
	// DefaultName(id).
	CreatePin(ctx context.Context, x, y float64) (core.Pin, error)

	// RenamePin sets the name of pin id and returns the updated pin.
	RenamePin(ctx context.Context, id int64, name string) (core.Pin, error)
}

// History is implemented by backends that keep an audit trail of pin changes.
// Rows are written in batches, so the newest changes may not be listed yet.
type History interface {
	Changes(ctx context.Context, id int64) ([]model.PinChange, error)
}

// DefaultName is the name a pin gets when it is created.
func DefaultName(id int64) string {
	return fmt.Sprintf("Pin %d", id)
}
