package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OCAP2/pinmap/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// PIXEL SPACE
// Envelopes and points here are always in image-pixel space (X right, Y down the image).
// Conversion to the widget's (lat, lng) axes happens only through core.Pixel.LatLng.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PixelFromString parses a string in the format "x,y" into an image-pixel position.
func PixelFromString(coords string) (core.Pixel, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.Pixel{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Pixel{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Pixel{}, ErrInvalidCoordinates
	}
	return core.Pixel{X: x, Y: y}, nil
}

// LatLngFromString parses a "lat,lng" string as reported by the map widget.
func LatLngFromString(coords string) (core.LatLng, error) {
	// same shape as a pixel, read in widget order
	p, err := PixelFromString(coords)
	if err != nil {
		return core.LatLng{}, err
	}
	return core.LatLng{Lat: p.X, Lng: p.Y}, nil
}

// Point builds a geometry point for an image-pixel position. Non-finite
// coordinates give an empty point.
func Point(p core.Pixel) geom.Point {
	pt, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Type: geom.DimXY,
	})
	if err != nil {
		return geom.Point{}
	}
	return pt
}

// ImageBounds returns the logical extent of an image of the given pixel size.
// The envelope is empty if either size is not finite.
func ImageBounds(width, height float64) geom.Envelope {
	env, err := geom.NewEnvelope([]geom.XY{{X: 0, Y: 0}, {X: width, Y: height}})
	if err != nil {
		return geom.Envelope{}
	}
	return env
}

// Extent returns the smallest envelope covering every pin. Empty if pins is empty.
// Pins with non-finite coordinates are skipped.
func Extent(pins []core.Pin) geom.Envelope {
	var env geom.Envelope
	for _, p := range pins {
		next, err := env.ExtendToIncludeXY(geom.XY{X: p.X, Y: p.Y})
		if err != nil {
			continue
		}
		env = next
	}
	return env
}

// Contains reports whether the pixel lies within env (inclusive of its border).
func Contains(env geom.Envelope, p core.Pixel) bool {
	return env.Contains(geom.XY{X: p.X, Y: p.Y})
}

// WidgetCorners returns the south-west and north-east corners of env in widget space,
// i.e. [[0, 0], [height, width]] for a full image. ok is false for an empty envelope.
func WidgetCorners(env geom.Envelope) (sw, ne core.LatLng, ok bool) {
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return core.LatLng{}, core.LatLng{}, false
	}
	sw = core.Pixel{X: lo.X, Y: lo.Y}.LatLng()
	ne = core.Pixel{X: hi.X, Y: hi.Y}.LatLng()
	return sw, ne, true
}
