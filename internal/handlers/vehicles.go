package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mymileages/my-mileages/internal/db"
	"github.com/mymileages/my-mileages/internal/middleware"
	"github.com/mymileages/my-mileages/internal/models"
)

// VehicleHandler handles vehicle CRUD requests
type VehicleHandler struct {
	vehicleCollection db.VehicleCollection
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleCollection db.VehicleCollection) *VehicleHandler {
	return &VehicleHandler{
		vehicleCollection: vehicleCollection,
	}
}

// Vehicles dispatches /api/vehicles requests by method.
func (h *VehicleHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/vehicles"), "/")

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

func (h *VehicleHandler) list(w http.ResponseWriter, r *http.Request, userID string) {
	vehicles, err := h.vehicleCollection.ListVehicles(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("failed to list vehicles")
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

func (h *VehicleHandler) create(w http.ResponseWriter, r *http.Request, userID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if vehicle.Make == "" || vehicle.Model == "" {
		http.Error(w, "Make and model are required", http.StatusBadRequest)
		return
	}

	vehicle.ID = uuid.NewString()
	vehicle.UserID = userID
	vehicle.CreatedAt = time.Now()

	if err := h.vehicleCollection.SaveVehicle(r.Context(), vehicle); err != nil {
		log.WithError(err).Error("failed to save vehicle")
		http.Error(w, "Failed to save vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vehicle)
}

func (h *VehicleHandler) update(w http.ResponseWriter, r *http.Request, userID, id string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if vehicle.Make == "" || vehicle.Model == "" {
		http.Error(w, "Make and model are required", http.StatusBadRequest)
		return
	}

	// The path is authoritative for identity.
	vehicle.ID = id
	vehicle.UserID = userID

	if err := h.vehicleCollection.SaveVehicle(r.Context(), vehicle); err != nil {
		log.WithError(err).Error("failed to update vehicle")
		http.Error(w, "Failed to update vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

func (h *VehicleHandler) delete(w http.ResponseWriter, r *http.Request, userID, id string) {
	if err := h.vehicleCollection.DeleteVehicle(r.Context(), userID, id); err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Vehicle deleted successfully"})
}
