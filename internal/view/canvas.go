// Package view provides in-memory, text-rendered implementations of the map canvas,
// the pin list and the alert surface. The terminal client draws with them and tests
// inspect them.
package view

import (
	"fmt"
	"sync"

	"github.com/OCAP2/pinmap/internal/projection"
	"github.com/OCAP2/pinmap/pkg/core"
)

// Marker is a marker as currently drawn on the canvas.
type Marker struct {
	Handle projection.MarkerHandle
	Pos    core.LatLng
	Popup  string
}

// Canvas is an in-memory map widget working in widget (lat, lng) coordinates.
type Canvas struct {
	mu       sync.Mutex
	next     uint64
	markers  map[projection.MarkerHandle]*Marker
	order    []projection.MarkerHandle
	sw, ne   core.LatLng
	handlers []func(core.LatLng)
}

var _ projection.Canvas = (*Canvas)(nil)

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		markers: make(map[projection.MarkerHandle]*Marker),
	}
}

// AddMarker places a marker at pos with the given popup text.
func (c *Canvas) AddMarker(pos core.LatLng, popup string) (projection.MarkerHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	h := projection.MarkerHandle(c.next)
	c.markers[h] = &Marker{Handle: h, Pos: pos, Popup: popup}
	c.order = append(c.order, h)
	return h, nil
}

// SetPopup replaces the popup text of an existing marker.
func (c *Canvas) SetPopup(h projection.MarkerHandle, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.markers[h]; ok {
		m.Popup = text
	}
}

// RemoveMarker takes a marker off the canvas.
func (c *Canvas) RemoveMarker(h projection.MarkerHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.markers[h]; !ok {
		return
	}
	delete(c.markers, h)
	for i, o := range c.order {
		if o == h {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// FitBounds sets the viewport to the rectangle spanned by sw and ne.
func (c *Canvas) FitBounds(sw, ne core.LatLng) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sw, c.ne = sw, ne
}

// Viewport returns the rectangle last passed to FitBounds.
func (c *Canvas) Viewport() (sw, ne core.LatLng) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sw, c.ne
}

// OnClick registers fn to run for every click on the canvas.
func (c *Canvas) OnClick(fn func(core.LatLng)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Click simulates a user click at pos, running every registered handler in order.
func (c *Canvas) Click(pos core.LatLng) {
	c.mu.Lock()
	handlers := make([]func(core.LatLng), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(pos)
	}
}

// Markers returns the markers on the canvas in the order they were added.
func (c *Canvas) Markers() []Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Marker, 0, len(c.order))
	for _, h := range c.order {
		out = append(out, *c.markers[h])
	}
	return out
}

// Marker returns the marker with handle h.
func (c *Canvas) Marker(h projection.MarkerHandle) (Marker, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.markers[h]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

func (m Marker) String() string {
	return fmt.Sprintf("marker %s %q", m.Pos, m.Popup)
}
