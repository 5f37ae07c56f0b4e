package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymileages/my-mileages/internal/db"
	"github.com/mymileages/my-mileages/internal/middleware"
	"github.com/mymileages/my-mileages/internal/models"
)

// TripHandler handles trip CRUD and lookup requests
type TripHandler struct {
	tripCollection db.TripCollection
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripCollection db.TripCollection) *TripHandler {
	return &TripHandler{
		tripCollection: tripCollection,
	}
}

// Trips dispatches /api/trips requests by method.
func (h *TripHandler) Trips(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/trips"), "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		h.list(w, r, claims.UserID)
	case r.Method == http.MethodPost && id == "":
		h.create(w, r, claims.UserID)
	case r.Method == http.MethodPut && id != "":
		h.update(w, r, claims.UserID, id)
	case r.Method == http.MethodDelete && id != "":
		h.delete(w, r, claims.UserID, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TripHandler) list(w http.ResponseWriter, r *http.Request, userID string) {
	var trips []models.Trip
	var err error

	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" && vehicleID != "all" {
		trips, err = h.tripCollection.ListTripsByVehicle(r.Context(), userID, vehicleID)
	} else {
		trips, err = h.tripCollection.ListTrips(r.Context(), userID)
	}
	if err != nil {
		log.WithError(err).Error("failed to list trips")
		http.Error(w, "Failed to list trips", http.StatusInternalServerError)
		return
	}

	// Storage only orders on the date field; re-apply the full ordering.
	models.SortByDateDesc(trips)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trips)
}

func (h *TripHandler) create(w http.ResponseWriter, r *http.Request, userID string) {
	trip, ok := h.decodeTrip(w, r)
	if !ok {
		return
	}

	trip.ID = ""
	trip.UserID = userID
	trip.Timestamp = time.Now().UnixMilli()

	if err := trip.NormalizeDefaults(false); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.tripCollection.SaveTrip(r.Context(), trip); err != nil {
		log.WithError(err).Error("failed to save trip")
		http.Error(w, "Failed to save trip", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(trip)
}

func (h *TripHandler) update(w http.ResponseWriter, r *http.Request, userID, id string) {
	trip, ok := h.decodeTrip(w, r)
	if !ok {
		return
	}

	trip.ID = id
	trip.UserID = userID
	trip.Timestamp = time.Now().UnixMilli()

	if err := trip.NormalizeDefaults(false); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.tripCollection.SaveTrip(r.Context(), trip); err != nil {
		log.WithError(err).Error("failed to update trip")
		http.Error(w, "Failed to update trip", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trip)
}

func (h *TripHandler) delete(w http.ResponseWriter, r *http.Request, userID, id string) {
	if err := h.tripCollection.DeleteTrip(r.Context(), userID, id); err != nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Trip deleted successfully"})
}

// decodeTrip reads and validates the common trip payload fields.
func (h *TripHandler) decodeTrip(w http.ResponseWriter, r *http.Request) (models.Trip, bool) {
	var trip models.Trip

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return trip, false
	}

	if err := json.Unmarshal(body, &trip); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return trip, false
	}

	if trip.VehicleID == "" {
		http.Error(w, "Vehicle is required", http.StatusBadRequest)
		return trip, false
	}
	if trip.Date == "" {
		http.Error(w, "Date is required", http.StatusBadRequest)
		return trip, false
	}

	return trip, true
}

// Destinations returns the user's distinct destinations, for
// autocomplete suggestions.
func (h *TripHandler) Destinations(w http.ResponseWriter, r *http.Request) {
	h.uniques(w, r, func(t models.Trip) string { return t.Destination })
}

// Companies returns the user's distinct companies, for autocomplete
// suggestions.
func (h *TripHandler) Companies(w http.ResponseWriter, r *http.Request) {
	h.uniques(w, r, func(t models.Trip) string { return t.Company })
}

func (h *TripHandler) uniques(w http.ResponseWriter, r *http.Request, field func(models.Trip) string) {
	if r.Method != http.MethodGet {
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

	seen := make(map[string]bool)
	values := []string{}
	for _, t := range trips {
		v := field(t)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(values)
}

// LastOdometer returns the most recent end odometer reading for a
// vehicle, used to pre-fill the start odometer of a new trip.
func (h *TripHandler) LastOdometer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		http.Error(w, "vehicle_id is required", http.StatusBadRequest)
		return
	}

	trips, err := h.tripCollection.ListTripsByVehicle(r.Context(), claims.UserID, vehicleID)
	if err != nil {
		log.WithError(err).Error("failed to list trips")
		http.Error(w, "Failed to list trips", http.StatusInternalServerError)
		return
	}

	models.SortByDateDesc(trips)

	response := map[string]float64{"last_odometer": 0}
	if len(trips) > 0 {
		response["last_odometer"] = trips[0].EndOdometer
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
