package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

func (c Coordinate) Validate() error {
	return validate.Struct(c)
}

// Location is what the user typed or what geolocation detected.
// Coordinates is nil until a detection succeeded.
type Location struct {
	City        string      `json:"city"`
	State       string      `json:"state"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
}
