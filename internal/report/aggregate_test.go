package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mymileages/my-mileages/internal/models"
)

func TestTotalDistance(t *testing.T) {
	trips := []models.Trip{
		{Distance: 10.5},
		{Distance: 20},
		{Distance: 0},
	}
	assert.Equal(t, 30.5, TotalDistance(trips))
}

func TestTotalDistance_Empty(t *testing.T) {
	assert.Equal(t, 0.0, TotalDistance(nil))
	assert.Equal(t, 0.0, TotalDistance([]models.Trip{}))
}

func TestTotalDistance_FilterAllIdempotent(t *testing.T) {
	trips := []models.Trip{
		{ID: "a", Date: "2026-08-01", Distance: 12},
		{ID: "b", Date: "2025-01-15", Distance: 8},
		{ID: "c", Date: "bogus", Distance: 5},
	}
	filtered := Filter(trips, PeriodAll, "", time.Now())
	assert.Equal(t, TotalDistance(trips), TotalDistance(filtered))
}

func TestDailyBuckets(t *testing.T) {
	trips := []models.Trip{
		{Date: "2026-08-03", Distance: 5},
		{Date: "2026-08-01", Distance: 10},
		{Date: "2026-08-03", Distance: 7},
		{Date: "2026-08-10", Distance: 2},
	}

	buckets := DailyBuckets(trips)
	assert.Equal(t, []DailyDistance{
		{Date: "2026-08-01", Distance: 10},
		{Date: "2026-08-03", Distance: 12},
		{Date: "2026-08-10", Distance: 2},
	}, buckets)
}

func TestDailyBuckets_SparseAndEmpty(t *testing.T) {
	assert.Empty(t, DailyBuckets(nil))

	// Gaps in the date range stay absent rather than zero-filled.
	buckets := DailyBuckets([]models.Trip{
		{Date: "2026-08-01", Distance: 1},
		{Date: "2026-08-05", Distance: 1},
	})
	assert.Len(t, buckets, 2)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	trips := []models.Trip{
		{Date: "2026-08-28", Distance: 12},
		{Date: "2026-08-28", Distance: 3},
		{Date: "2026-08-27", Distance: 40},
	}

	stats := Summarize(trips, now)
	assert.Equal(t, 2, stats.TodayTrips)
	assert.Equal(t, 15.0, stats.TodayMiles)
	assert.Equal(t, 3, stats.TotalTrips)
	assert.Equal(t, 55.0, stats.TotalMiles)
}
