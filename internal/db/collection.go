package db

import (
	"context"

	"github.com/mymileages/my-mileages/internal/models"
)

// VehicleCollection defines the interface for vehicle persistence
// operations. Every operation takes the owning user's id explicitly;
// there is no ambient session state.
type VehicleCollection interface {
	ListVehicles(ctx context.Context, userID string) ([]models.Vehicle, error)
	SaveVehicle(ctx context.Context, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, userID, id string) error
}

// TripCollection defines the interface for trip persistence operations.
type TripCollection interface {
	ListTrips(ctx context.Context, userID string) ([]models.Trip, error)
	ListTripsByVehicle(ctx context.Context, userID, vehicleID string) ([]models.Trip, error)
	SaveTrip(ctx context.Context, trip models.Trip) error
	SaveTrips(ctx context.Context, trips []models.Trip) error
	DeleteTrip(ctx context.Context, userID, id string) error
}
