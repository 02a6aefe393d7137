// Package syncer runs the load, create and rename flows against the pin store and
// keeps the projection store consistent with what the store confirmed.
//
// Updates are confirmed, never optimistic: the board changes only after the pin store
// acknowledges a request. Failures are reported through the Notifier and leave the
// board as it was. Flows may run concurrently; requests carry no sequencing token, so
// each flow applies its result to whatever the board holds when its response arrives.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OCAP2/pinmap/internal/geo"
	"github.com/OCAP2/pinmap/internal/projection"
	"github.com/OCAP2/pinmap/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// RemoteStore is the pin store as seen by the controller.
type RemoteStore interface {
	ListPins(ctx context.Context) ([]core.Pin, error)
	CreatePin(ctx context.Context, x, y float64) (core.Pin, error)
	RenamePin(ctx context.Context, id int64, name string) error
}

// Notifier shows a message the user has to acknowledge.
type Notifier interface {
	Alert(msg string)
}

// Dependencies holds all dependencies for the controller
type Dependencies struct {
	Remote   RemoteStore
	Store    *projection.Store
	Canvas   projection.Canvas
	Notifier Notifier
	Logger   *slog.Logger

	// ImageBounds is the image extent in pixels; the viewport is fitted to it on Start.
	ImageBounds geom.Envelope
}

// Controller is the only writer of the projection store.
type Controller struct {
	deps    Dependencies
	log     *slog.Logger
	metrics *metrics
}

// New creates a controller. Metrics use the global OTel meter (no-op if not configured).
func New(deps Dependencies) (*Controller, error) {
	if deps.Remote == nil || deps.Store == nil || deps.Notifier == nil {
		return nil, fmt.Errorf("syncer: remote, store and notifier are required")
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		deps:    deps,
		log:     log.With("component", "syncer"),
		metrics: m,
	}, nil
}

// Start fits the viewport to the image, starts listening for map clicks and loads the pins.
func (c *Controller) Start(ctx context.Context) error {
	if c.deps.Canvas != nil {
		if sw, ne, ok := geo.WidgetCorners(c.deps.ImageBounds); ok {
			c.deps.Canvas.FitBounds(sw, ne)
		}
		c.deps.Canvas.OnClick(func(pos core.LatLng) {
			_, _ = c.Click(ctx, pos)
		})
	}
	return c.Load(ctx)
}

// Fit frames the viewport around the registered pins and reports whether any were found.
// With no pins the viewport goes back to the whole image.
func (c *Controller) Fit() bool {
	if c.deps.Canvas == nil {
		return false
	}
	if sw, ne, ok := geo.WidgetCorners(geo.Extent(c.deps.Store.Pins())); ok {
		c.deps.Canvas.FitBounds(sw, ne)
		return true
	}
	if sw, ne, ok := geo.WidgetCorners(c.deps.ImageBounds); ok {
		c.deps.Canvas.FitBounds(sw, ne)
	}
	return false
}

// Load fetches every pin and rebuilds the board from the result.
// On failure the user is told and the current board is kept.
func (c *Controller) Load(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.metrics.record(ctx, "load", start, err) }()

	pins, err := c.deps.Remote.ListPins(ctx)
	if err != nil {
		c.log.Warn("Failed to load pins", "error", err)
		c.deps.Notifier.Alert("Failed to load pins: " + serverMessage(err))
		return fmt.Errorf("load pins: %w", err)
	}

	if err := c.deps.Store.Replace(pins); err != nil {
		c.log.Error("Failed to draw pins", "error", err)
		c.deps.Notifier.Alert("Failed to draw pins: " + err.Error())
		return fmt.Errorf("draw pins: %w", err)
	}

	c.log.Info("Pins loaded", "count", len(pins), "duration", time.Since(start))
	return nil
}

// Click creates a pin where the user clicked the map. pos is in widget coordinates.
func (c *Controller) Click(ctx context.Context, pos core.LatLng) (core.Pin, error) {
	px := pos.Pixel()
	if !c.deps.ImageBounds.IsEmpty() && !geo.Contains(c.deps.ImageBounds, px) {
		c.log.Debug("Click outside image bounds", "x", px.X, "y", px.Y)
	}
	return c.Create(ctx, px.X, px.Y)
}

// Create asks the pin store for a new pin at image pixel (x, y) and draws it once confirmed.
func (c *Controller) Create(ctx context.Context, x, y float64) (pin core.Pin, err error) {
	start := time.Now()
	defer func() { c.metrics.record(ctx, "create", start, err) }()

	pin, err = c.deps.Remote.CreatePin(ctx, x, y)
	if err != nil {
		c.log.Warn("Failed to create pin", "x", x, "y", y, "error", err)
		c.deps.Notifier.Alert("Failed to create pin")
		return core.Pin{}, fmt.Errorf("create pin: %w", err)
	}

	if err := c.deps.Store.Upsert(pin); err != nil {
		c.log.Error("Failed to draw pin", "id", pin.ID, "error", err)
		c.deps.Notifier.Alert("Failed to create pin")
		return core.Pin{}, fmt.Errorf("draw pin %d: %w", pin.ID, err)
	}

	c.log.Debug("Pin created", "id", pin.ID, "name", pin.Name, "x", pin.X, "y", pin.Y)
	return pin, nil
}

// BeginEdit puts the card of pin id into edit mode and returns the current name.
func (c *Controller) BeginEdit(id int64) (string, error) {
	name, ok := c.deps.Store.BeginEdit(id)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownPin, id)
	}
	return name, nil
}

// CancelEdit leaves edit mode without renaming.
func (c *Controller) CancelEdit(id int64) {
	c.deps.Store.EndEdit(id)
}

// SubmitEdit leaves edit mode and renames pin id to text. Only a card put into edit
// mode by BeginEdit accepts a submission; anything else returns ErrUnknownPin or
// ErrNotEditing without a request.
func (c *Controller) SubmitEdit(ctx context.Context, id int64, text string) error {
	if !c.deps.Store.EndEdit(id) {
		if !c.deps.Store.Has(id) {
			return fmt.Errorf("%w: %d", ErrUnknownPin, id)
		}
		return fmt.Errorf("%w: %d", ErrNotEditing, id)
	}
	return c.Rename(ctx, id, text)
}

// Rename sets the name of pin id to the trimmed text once the pin store accepts it.
// Blank text is dropped with ErrValidationSkip; nothing is sent.
func (c *Controller) Rename(ctx context.Context, id int64, text string) (err error) {
	start := time.Now()
	defer func() { c.metrics.record(ctx, "rename", start, err) }()

	name := strings.TrimSpace(text)
	if name == "" {
		return ErrValidationSkip
	}
	if !c.deps.Store.Has(id) {
		return fmt.Errorf("%w: %d", ErrUnknownPin, id)
	}

	if err := c.deps.Remote.RenamePin(ctx, id, name); err != nil {
		c.log.Warn("Failed to rename pin", "id", id, "error", err)
		c.deps.Notifier.Alert("Rename failed: " + serverMessage(err))
		return fmt.Errorf("rename pin %d: %w", id, err)
	}

	c.deps.Store.RenameLocal(id, name)
	c.log.Debug("Pin renamed", "id", id, "name", name)
	return nil
}
