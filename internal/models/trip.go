package models

import (
	"errors"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Default labels applied when a trip field is left blank. Manual entry and
// bulk import use different placeholder text so the origin of a record stays
// visible in reports.
const (
	DefaultLabel         = "Unspecified"
	DefaultImportedLabel = "Imported Trip"

	DefaultStartTime         = "09:00"
	DefaultImportedStartTime = "12:00"
)

var ErrOdometerNotFinite = errors.New("odometer value is not a finite number")

// Trip represents a single logged trip between two odometer readings.
type Trip struct {
	ID            string  `bson:"_id" json:"id"`
	UserID        string  `bson:"user_id" json:"-"`
	VehicleID     string  `bson:"vehicle_id" json:"vehicle_id"`
	Date          string  `bson:"date" json:"date"`             // YYYY-MM-DD
	StartTime     string  `bson:"start_time" json:"start_time"` // HH:MM, display only
	StartOdometer float64 `bson:"start_odometer" json:"start_odometer"`
	EndOdometer   float64 `bson:"end_odometer" json:"end_odometer"`
	Distance      float64 `bson:"distance" json:"distance"`
	Destination   string  `bson:"destination" json:"destination"`
	Company       string  `bson:"company" json:"company"`
	Notes         string  `bson:"notes,omitempty" json:"notes,omitempty"`
	Timestamp     int64   `bson:"timestamp" json:"timestamp"` // unix millis at save, tie-break only
}

// DeriveDistance computes the distance covered between two odometer readings.
// Distance is always derived from the odometers, never entered independently;
// every code path that sets either odometer value must call this in the same
// operation.
func DeriveDistance(start, end float64) float64 {
	return end - start
}

// Recalculate refreshes the derived distance field from the current odometer
// values. Call after any edit to StartOdometer or EndOdometer.
func (t *Trip) Recalculate() {
	t.Distance = DeriveDistance(t.StartOdometer, t.EndOdometer)
}

// Validate rejects trips whose odometer values are not finite numbers.
func (t *Trip) Validate() error {
	if !isFinite(t.StartOdometer) || !isFinite(t.EndOdometer) {
		return ErrOdometerNotFinite
	}
	return nil
}

// NormalizeDefaults fills blank display fields with path-appropriate
// defaults, assigns a fresh identifier when none is set, and recomputes
// the derived distance. The imported flag selects the import-path
// placeholder text. Returns ErrOdometerNotFinite for unusable odometers.
func (t *Trip) NormalizeDefaults(imported bool) error {
	if err := t.Validate(); err != nil {
		return err
	}

	label := DefaultLabel
	startTime := DefaultStartTime
	if imported {
		label = DefaultImportedLabel
		startTime = DefaultImportedStartTime
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Destination == "" {
		t.Destination = label
	}
	if t.Company == "" {
		t.Company = label
	}
	if t.StartTime == "" {
		t.StartTime = startTime
	}

	t.Recalculate()
	return nil
}

// SortByDateDesc orders trips by date descending, newest first. Same-day
// trips are tie-broken by creation timestamp descending. The persistence
// layer only guarantees ordering on the date field, so this must be
// re-applied after every fetch.
func SortByDateDesc(trips []Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		if trips[i].Date != trips[j].Date {
			return trips[i].Date > trips[j].Date
		}
		return trips[i].Timestamp > trips[j].Timestamp
	})
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
