package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mymileages/my-mileages/internal/models"
)

func TestVehicleHandler_List(t *testing.T) {
	mockVehicles := new(MockVehicleCollection)
	handler := NewVehicleHandler(mockVehicles)

	vehicles := []models.Vehicle{
		{ID: "v1", UserID: "u1", Make: "Toyota", Model: "Camry", Year: "2023"},
		{ID: "v2", UserID: "u1", Make: "Honda", Model: "Civic", Year: "2021"},
	}
	mockVehicles.On("ListVehicles", mock.Anything, "u1").Return(vehicles, nil)

	req := withClaims(httptest.NewRequest("GET", "/api/vehicles", nil), "u1")
	w := httptest.NewRecorder()

	handler.Vehicles(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []models.Vehicle
	err := json.Unmarshal(w.Body.Bytes(), &got)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Toyota", got[0].Make)
}

func TestVehicleHandler_Create(t *testing.T) {
	t.Run("assigns id and owner", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles)

		mockVehicles.On("SaveVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
			return v.ID != "" && v.UserID == "u1" && v.Make == "Toyota"
		})).Return(nil)

		body, _ := json.Marshal(models.Vehicle{Make: "Toyota", Model: "Camry", Year: "2023", Nickname: "Daily"})
		req := withClaims(httptest.NewRequest("POST", "/api/vehicles", bytes.NewBuffer(body)), "u1")
		w := httptest.NewRecorder()

		handler.Vehicles(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var got models.Vehicle
		json.Unmarshal(w.Body.Bytes(), &got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Daily", got.Nickname)
		mockVehicles.AssertExpectations(t)
	})

	t.Run("missing make", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles)

		body, _ := json.Marshal(models.Vehicle{Model: "Camry"})
		req := withClaims(httptest.NewRequest("POST", "/api/vehicles", bytes.NewBuffer(body)), "u1")
		w := httptest.NewRecorder()

		handler.Vehicles(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVehicleHandler_Update(t *testing.T) {
	mockVehicles := new(MockVehicleCollection)
	handler := NewVehicleHandler(mockVehicles)

	// Path id wins over any id in the payload.
	mockVehicles.On("SaveVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
		return v.ID == "v1" && v.UserID == "u1"
	})).Return(nil)

	body, _ := json.Marshal(models.Vehicle{ID: "other", Make: "Toyota", Model: "Camry"})
	req := withClaims(httptest.NewRequest("PUT", "/api/vehicles/v1", bytes.NewBuffer(body)), "u1")
	w := httptest.NewRecorder()

	handler.Vehicles(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockVehicles.AssertExpectations(t)
}

func TestVehicleHandler_Delete(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles)

		mockVehicles.On("DeleteVehicle", mock.Anything, "u1", "v1").Return(nil)

		req := withClaims(httptest.NewRequest("DELETE", "/api/vehicles/v1", nil), "u1")
		w := httptest.NewRecorder()

		handler.Vehicles(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockVehicles.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		handler := NewVehicleHandler(mockVehicles)

		mockVehicles.On("DeleteVehicle", mock.Anything, "u1", "missing").Return(errors.New("vehicle not found"))

		req := withClaims(httptest.NewRequest("DELETE", "/api/vehicles/missing", nil), "u1")
		w := httptest.NewRecorder()

		handler.Vehicles(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVehicleHandler_Unauthenticated(t *testing.T) {
	handler := NewVehicleHandler(new(MockVehicleCollection))

	req := httptest.NewRequest("GET", "/api/vehicles", nil)
	w := httptest.NewRecorder()

	handler.Vehicles(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
