// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"time"

	"github.com/OCAP2/pinmap/internal/geo"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/pkg/core"
	"gorm.io/datatypes"
)

// PinToCore converts a GORM model.Pin to a core.Pin.
func PinToCore(p model.Pin) core.Pin {
	return core.Pin{
		ID:   int64(p.ID),
		Name: p.Name,
		X:    p.X,
		Y:    p.Y,
	}
}

// PinsToCore converts a slice of GORM pins, keeping order.
func PinsToCore(pins []model.Pin) []core.Pin {
	out := make([]core.Pin, 0, len(pins))
	for _, p := range pins {
		out = append(out, PinToCore(p))
	}
	return out
}

// CoreToPin converts a core.Pin to a GORM model.Pin.
// A zero ID lets the database assign one.
func CoreToPin(p core.Pin) model.Pin {
	return model.Pin{
		ID:       uint(p.ID),
		Name:     p.Name,
		X:        p.X,
		Y:        p.Y,
		Position: geo.Point(p.Pixel()),
	}
}

// Change builds the audit row for action applied to p at t.
// The payload is the pin as served by the API.
func Change(action string, p core.Pin, t time.Time) model.PinChange {
	payload, err := json.Marshal(p)
	if err != nil {
		payload = []byte("{}")
	}
	return model.PinChange{
		Time:    t,
		PinID:   uint(p.ID),
		Action:  action,
		Payload: datatypes.JSON(payload),
	}
}
