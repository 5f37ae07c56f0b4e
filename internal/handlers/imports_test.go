package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mymileages/my-mileages/internal/importer"
	"github.com/mymileages/my-mileages/internal/models"
)

// multipartUpload builds a multipart request body with one file field.
func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestImportHandler_Preview(t *testing.T) {
	t.Run("valid csv", func(t *testing.T) {
		handler := NewImportHandler(new(MockTripCollection))

		csv := "Date,Start Odometer,End Odometer,Destination,Company\n" +
			"2026-08-01,1000,1050,Office,Acme\n" +
			"2026-08-02,1050,1120,Airport,Acme\n"
		body, contentType := multipartUpload(t, "trips.csv", csv)

		req := withClaims(httptest.NewRequest("POST", "/api/trips/import", body), "u1")
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Preview(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result importer.Result
		err := json.Unmarshal(w.Body.Bytes(), &result)
		assert.NoError(t, err)
		assert.Len(t, result.Fragments, 2)
		assert.Equal(t, 0, result.Dropped)
		assert.Equal(t, 50.0, result.Fragments[0].Distance)
		assert.Equal(t, "Office", result.Fragments[0].Destination)
	})

	t.Run("reports dropped rows", func(t *testing.T) {
		handler := NewImportHandler(new(MockTripCollection))

		csv := "Date,Start Odometer,End Odometer\n" +
			"2026-08-01,1000,1050\n" +
			"2026-08-02,garbage,1120\n"
		body, contentType := multipartUpload(t, "trips.csv", csv)

		req := withClaims(httptest.NewRequest("POST", "/api/trips/import", body), "u1")
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Preview(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result importer.Result
		json.Unmarshal(w.Body.Bytes(), &result)
		assert.Len(t, result.Fragments, 1)
		assert.Equal(t, 1, result.Dropped)
	})

	t.Run("missing odometer column", func(t *testing.T) {
		handler := NewImportHandler(new(MockTripCollection))

		csv := "Date,Destination\n2026-08-01,Office\n"
		body, contentType := multipartUpload(t, "trips.csv", csv)

		req := withClaims(httptest.NewRequest("POST", "/api/trips/import", body), "u1")
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Preview(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing required column")
	})

	t.Run("no file", func(t *testing.T) {
		handler := NewImportHandler(new(MockTripCollection))

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		writer.Close()

		req := withClaims(httptest.NewRequest("POST", "/api/trips/import", &buf), "u1")
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()

		handler.Preview(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestImportHandler_Commit(t *testing.T) {
	t.Run("persists fragments as trips", func(t *testing.T) {
		mockTrips := new(MockTripCollection)
		handler := NewImportHandler(mockTrips)

		var saved []models.Trip
		mockTrips.On("SaveTrips", mock.Anything, mock.MatchedBy(func(trips []models.Trip) bool {
			saved = trips
			return len(trips) == 2
		})).Return(nil)

		commitReq := CommitRequest{
			VehicleID: "v1",
			Fragments: []importer.Fragment{
				{Date: "2026-08-01", StartOdometer: 1000, EndOdometer: 1050, Destination: "Office", Company: "Acme"},
				{Date: "2026-08-02", StartOdometer: 1050, EndOdometer: 1120},
			},
		}
		body, _ := json.Marshal(commitReq)

		req := withClaims(httptest.NewRequest("POST", "/api/trips/import/commit", bytes.NewBuffer(body)), "u1")
		w := httptest.NewRecorder()

		handler.Commit(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, saved, 2)

		// Blank fields take the import-path defaults.
		assert.Equal(t, "Office", saved[0].Destination)
		assert.Equal(t, models.DefaultImportedLabel, saved[1].Destination)
		assert.Equal(t, models.DefaultImportedLabel, saved[1].Company)
		assert.Equal(t, models.DefaultImportedStartTime, saved[1].StartTime)

		for _, trip := range saved {
			assert.NotEmpty(t, trip.ID)
			assert.Equal(t, "u1", trip.UserID)
			assert.Equal(t, "v1", trip.VehicleID)
			assert.Equal(t, trip.EndOdometer-trip.StartOdometer, trip.Distance)
		}

		var response map[string]int
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, 2, response["imported"])
	})

	t.Run("missing vehicle", func(t *testing.T) {
		handler := NewImportHandler(new(MockTripCollection))

		body, _ := json.Marshal(CommitRequest{Fragments: []importer.Fragment{{Date: "2026-08-01"}}})
		req := withClaims(httptest.NewRequest("POST", "/api/trips/import/commit", bytes.NewBuffer(body)), "u1")
		w := httptest.NewRecorder()

		handler.Commit(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty fragments", func(t *testing.T) {
		handler := NewImportHandler(new(MockTripCollection))

		body, _ := json.Marshal(CommitRequest{VehicleID: "v1"})
		req := withClaims(httptest.NewRequest("POST", "/api/trips/import/commit", bytes.NewBuffer(body)), "u1")
		w := httptest.NewRecorder()

		handler.Commit(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
