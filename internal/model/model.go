package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Board{},
	&Pin{},
	&PinChange{},
}

// Board describes the image the pins of this instance are placed on.
// A single row is seeded on first setup.
type Board struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name" gorm:"size:127"`
	ImageURL  string    `json:"imageUrl" gorm:"size:255"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
}

func (*Board) TableName() string {
	return "boards"
}

// Pin is a labeled point on the board image, in image pixels.
type Pin struct {
	ID        uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Name      string     `json:"name" gorm:"size:256"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Position  geom.Point `json:"position"` // X, Y as a point for spatial queries
}

func (*Pin) TableName() string {
	return "pins"
}

// Pin change actions
const (
	ActionCreate = "create"
	ActionRename = "rename"
)

// PinChange is an audit row written for every create and rename.
type PinChange struct {
	ID      uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time    time.Time      `json:"time" gorm:"index:idx_pin_change_time"`
	PinID   uint           `json:"pinId" gorm:"index:idx_pin_change_pin_id"`
	Action  string         `json:"action" gorm:"size:16"`
	Payload datatypes.JSON `json:"payload"`
}

func (*PinChange) TableName() string {
	return "pin_changes"
}
