package report

import (
	"sort"
	"time"

	"github.com/mymileages/my-mileages/internal/models"
)

// DailyDistance is one chart bucket: the summed distance of all trips on
// a single calendar date.
type DailyDistance struct {
	Date     string  `json:"date"`
	Distance float64 `json:"distance"`
}

// Stats summarizes a trip list for the dashboard.
type Stats struct {
	TodayTrips int     `json:"today_trips"`
	TodayMiles float64 `json:"today_miles"`
	TotalTrips int     `json:"total_trips"`
	TotalMiles float64 `json:"total_miles"`
}

// TotalDistance sums the stored distance fields. It deliberately trusts
// the derived field rather than recomputing from odometers; the trip
// model guarantees the two never diverge.
func TotalDistance(trips []models.Trip) float64 {
	var total float64
	for _, t := range trips {
		total += t.Distance
	}
	return total
}

// DailyBuckets groups trips by their exact date string and sums distance
// per group, returning buckets in ascending date order. Dates with no
// trips are absent, not zero-filled.
func DailyBuckets(trips []models.Trip) []DailyDistance {
	sums := make(map[string]float64)
	for _, t := range trips {
		sums[t.Date] += t.Distance
	}

	buckets := make([]DailyDistance, 0, len(sums))
	for date, distance := range sums {
		buckets = append(buckets, DailyDistance{Date: date, Distance: distance})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// Summarize computes the dashboard quick stats against now.
func Summarize(trips []models.Trip, now time.Time) Stats {
	today := now.Format(dateLayout)
	stats := Stats{TotalTrips: len(trips)}
	for _, t := range trips {
		stats.TotalMiles += t.Distance
		if t.Date == today {
			stats.TodayTrips++
			stats.TodayMiles += t.Distance
		}
	}
	return stats
}
