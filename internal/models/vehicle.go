package models

import (
	"time"
)

// UnknownVehicleLabel is shown for trips whose vehicle has been deleted.
// Deleting a vehicle never cascades to its trips, so dangling references
// are expected and must render rather than error.
const UnknownVehicleLabel = "Unknown Vehicle"

// Vehicle represents a vehicle a user tracks mileage for.
// Year is stored as free text, not validated as numeric.
type Vehicle struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"user_id" json:"-"`
	Make         string    `bson:"make" json:"make"`
	Model        string    `bson:"model" json:"model"`
	Year         string    `bson:"year" json:"year"`
	Nickname     string    `bson:"nickname,omitempty" json:"nickname,omitempty"`
	LicensePlate string    `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// DisplayName returns the vehicle's nickname, falling back to
// "<year> <make>" when no nickname was set.
func (v *Vehicle) DisplayName() string {
	if v.Nickname != "" {
		return v.Nickname
	}
	return v.Year + " " + v.Make
}

// VehicleName resolves a vehicle id to a display name against the given
// list, returning UnknownVehicleLabel for dangling references.
func VehicleName(vehicles []Vehicle, id string) string {
	for i := range vehicles {
		if vehicles[i].ID == id {
			return vehicles[i].DisplayName()
		}
	}
	return UnknownVehicleLabel
}
