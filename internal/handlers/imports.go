package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymileages/my-mileages/internal/db"
	"github.com/mymileages/my-mileages/internal/importer"
	"github.com/mymileages/my-mileages/internal/middleware"
	"github.com/mymileages/my-mileages/internal/models"
)

// maxImportSize caps the multipart form memory for uploaded trip files.
const maxImportSize = 10 << 20 // 10 MB

// ImportHandler handles bulk trip import requests
type ImportHandler struct {
	tripCollection db.TripCollection
}

// NewImportHandler creates a new import handler
func NewImportHandler(tripCollection db.TripCollection) *ImportHandler {
	return &ImportHandler{
		tripCollection: tripCollection,
	}
}

// Preview parses an uploaded CSV or spreadsheet file and returns the
// trip fragments that would be imported, without persisting anything.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := middleware.GetUserFromContext(r.Context()); !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	grid, err := parseUpload(file, header.Filename)
	if err != nil {
		log.WithError(err).WithField("filename", header.Filename).Warn("failed to parse import file")
		http.Error(w, "Failed to parse file", http.StatusBadRequest)
		return
	}

	result, err := importer.Normalize(grid)
	if err != nil {
		if errors.Is(err, importer.ErrMissingColumn) || errors.Is(err, importer.ErrNoValidTrips) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("import normalization failed")
		http.Error(w, "Failed to process file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// CommitRequest assigns previewed fragments to a vehicle for persistence.
type CommitRequest struct {
	VehicleID string              `json:"vehicle_id"`
	Fragments []importer.Fragment `json:"fragments"`
}

// Commit persists previously previewed trip fragments as trips of a
// chosen vehicle.
func (h *ImportHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var commitReq CommitRequest
	if err := json.Unmarshal(body, &commitReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if commitReq.VehicleID == "" {
		http.Error(w, "Vehicle is required", http.StatusBadRequest)
		return
	}
	if len(commitReq.Fragments) == 0 {
		http.Error(w, "No trips to import", http.StatusBadRequest)
		return
	}

	now := time.Now().UnixMilli()
	trips := make([]models.Trip, 0, len(commitReq.Fragments))
	for _, f := range commitReq.Fragments {
		trip := models.Trip{
			UserID:        claims.UserID,
			VehicleID:     commitReq.VehicleID,
			Date:          f.Date,
			StartTime:     f.StartTime,
			StartOdometer: f.StartOdometer,
			EndOdometer:   f.EndOdometer,
			Destination:   f.Destination,
			Company:       f.Company,
			Timestamp:     now,
		}
		if err := trip.NormalizeDefaults(true); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		trips = append(trips, trip)
	}

	if err := h.tripCollection.SaveTrips(r.Context(), trips); err != nil {
		log.WithError(err).Error("failed to save imported trips")
		http.Error(w, "Failed to save trips", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]int{"imported": len(trips)})
}

// parseUpload picks the grid parser by file extension. Spreadsheets go
// through the workbook reader, everything else is treated as CSV.
func parseUpload(file io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return importer.ParseWorkbook(file)
	default:
		return importer.ParseCSV(file)
	}
}
