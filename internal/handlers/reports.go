package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymileages/my-mileages/internal/db"
	"github.com/mymileages/my-mileages/internal/middleware"
	"github.com/mymileages/my-mileages/internal/models"
	"github.com/mymileages/my-mileages/internal/report"
)

// InsightGenerator produces a natural-language summary for a report.
type InsightGenerator interface {
	Generate(ctx context.Context, trips []models.Trip, vehicles []models.Vehicle) string
}

// ReportHandler handles report and dashboard requests
type ReportHandler struct {
	tripCollection    db.TripCollection
	vehicleCollection db.VehicleCollection
	insights          InsightGenerator
}

// NewReportHandler creates a new report handler
func NewReportHandler(tripCollection db.TripCollection, vehicleCollection db.VehicleCollection, insights InsightGenerator) *ReportHandler {
	return &ReportHandler{
		tripCollection:    tripCollection,
		vehicleCollection: vehicleCollection,
		insights:          insights,
	}
}

// ReportResponse is the assembled report payload.
type ReportResponse struct {
	Period        report.Period          `json:"period"`
	VehicleID     string                 `json:"vehicle_id"`
	Trips         []models.Trip          `json:"trips"`
	TotalDistance float64                `json:"total_distance"`
	TripCount     int                    `json:"trip_count"`
	Daily         []report.DailyDistance `json:"daily"`
	Stats         report.Stats           `json:"stats"`
}

// Report returns the filtered trips with totals and daily distance
// buckets. With format=csv the same selection is returned as a CSV
// attachment instead.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	period := report.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = report.PeriodAll
	}
	vehicleID := r.URL.Query().Get("vehicle_id")

	trips, err := h.tripCollection.ListTrips(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("failed to list trips")
		http.Error(w, "Failed to list trips", http.StatusInternalServerError)
		return
	}

	models.SortByDateDesc(trips)
	filtered := report.Filter(trips, period, vehicleID, time.Now())

	if r.URL.Query().Get("format") == "csv" {
		vehicles, err := h.vehicleCollection.ListVehicles(r.Context(), claims.UserID)
		if err != nil {
			log.WithError(err).Error("failed to list vehicles")
			http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="mileage_report.csv"`)
		w.Write(report.ExportCSV(filtered, vehicles))
		return
	}

	response := ReportResponse{
		Period:        period,
		VehicleID:     vehicleID,
		Trips:         filtered,
		TotalDistance: report.TotalDistance(filtered),
		TripCount:     len(filtered),
		Daily:         report.DailyBuckets(filtered),
		Stats:         report.Summarize(trips, time.Now()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Share returns the plain-text share message for the current selection.
func (h *ReportHandler) Share(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	period := report.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = report.PeriodAll
	}
	vehicleID := r.URL.Query().Get("vehicle_id")

	trips, err := h.tripCollection.ListTrips(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("failed to list trips")
		http.Error(w, "Failed to list trips", http.StatusInternalServerError)
		return
	}

	filtered := report.Filter(trips, period, vehicleID, time.Now())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"text": report.ShareText(filtered)})
}

// Insight generates an AI summary of the user's mileage data.
func (h *ReportHandler) Insight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	trips, err := h.tripCollection.ListTrips(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("failed to list trips")
		http.Error(w, "Failed to list trips", http.StatusInternalServerError)
		return
	}

	vehicles, err := h.vehicleCollection.ListVehicles(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("failed to list vehicles")
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}

	models.SortByDateDesc(trips)
	insight := h.insights.Generate(r.Context(), trips, vehicles)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"insight": insight})
}

// Health responds to liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
