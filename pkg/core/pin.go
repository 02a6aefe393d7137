// Package core holds the pin types shared by the pin server and its clients.
package core

import "fmt"

// Pin is a named point annotation in image-pixel space.
// ID is assigned by the pin store and never changes.
type Pin struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Pixel returns the pin position in image-pixel space.
func (p Pin) Pixel() Pixel {
	return Pixel{X: p.X, Y: p.Y}
}

// LatLng returns the pin position in map-widget space.
func (p Pin) LatLng() LatLng {
	return p.Pixel().LatLng()
}

// Meta is the coordinate line shown under the pin name on its card.
func (p Pin) Meta() string {
	return fmt.Sprintf("x: %.1f, y: %.1f", p.X, p.Y)
}

// Pixel is a position in image-pixel space: X runs horizontally, Y vertically.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LatLng is a position in the map widget's native axes.
// The widget is vertical-first, so Lat carries the pixel Y and Lng the pixel X.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LatLng converts image pixels to widget coordinates.
func (p Pixel) LatLng() LatLng {
	return LatLng{Lat: p.Y, Lng: p.X}
}

// Pixel converts widget coordinates back to image pixels.
func (l LatLng) Pixel() Pixel {
	return Pixel{X: l.Lng, Y: l.Lat}
}

func (l LatLng) String() string {
	return fmt.Sprintf("(%g, %g)", l.Lat, l.Lng)
}

// CreatePinRequest is the body of POST /api/pins.
type CreatePinRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreatePinResponse is the body returned by POST /api/pins.
type CreatePinResponse struct {
	OK    bool   `json:"ok"`
	Pin   *Pin   `json:"pin,omitempty"`
	Error string `json:"error,omitempty"`
}

// RenamePinRequest is the body of PATCH /api/pins/{id}.
type RenamePinRequest struct {
	Name string `json:"name"`
}

// StatusResponse is the generic {ok, error} reply of the pin API.
type StatusResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
