// Package report filters trips by calendar period and reduces them into
// summary statistics and export-ready rows. Every function is a pure
// transformation over its input slice.
package report

import (
	"time"

	"github.com/mymileages/my-mileages/internal/models"
)

// Period is a named calendar window used to narrow trips for reporting.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodAll     Period = "all"
)

// AllVehicles is the vehicle selector wildcard.
const AllVehicles = "all"

const dateLayout = "2006-01-02"

// Filter returns the trips matching the given period and vehicle selector,
// evaluated against now. An empty or "all" vehicleID matches every vehicle.
// Unrecognized period values pass every trip through unfiltered.
func Filter(trips []models.Trip, period Period, vehicleID string, now time.Time) []models.Trip {
	result := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		if vehicleID != "" && vehicleID != AllVehicles && t.VehicleID != vehicleID {
			continue
		}
		if !inPeriod(t.Date, period, now) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func inPeriod(date string, period Period, now time.Time) bool {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
	default:
		// "all" and anything unrecognized: no temporal filtering.
		return true
	}

	tripDate, err := time.Parse(dateLayout, date)
	if err != nil {
		// Unparseable dates cannot match a calendar window.
		return false
	}

	switch period {
	case PeriodDay:
		return tripDate.Year() == now.Year() && tripDate.YearDay() == now.YearDay()
	case PeriodWeek:
		weekAgo := now.Add(-7 * 24 * time.Hour)
		return !tripDate.Before(weekAgo)
	case PeriodMonth:
		return tripDate.Month() == now.Month() && tripDate.Year() == now.Year()
	case PeriodQuarter:
		return quarterOf(tripDate) == quarterOf(now) && tripDate.Year() == now.Year()
	case PeriodYear:
		return tripDate.Year() == now.Year()
	}
	return true
}

// quarterOf maps a month to its calendar quarter (1-4) using the
// zero-based month index: floor((month0 + 3) / 3).
func quarterOf(t time.Time) int {
	month0 := int(t.Month()) - 1
	return (month0 + 3) / 3
}
