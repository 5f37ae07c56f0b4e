package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/mymileages/my-mileages/internal/models"
)

// ExportHeader is the column row written first in any tabular export.
var ExportHeader = []string{
	"Date", "Vehicle", "Start Odometer", "End Odometer",
	"Distance", "Destination", "Company",
}

// exportVehicleLabel is the fallback vehicle cell for dangling references
// in exports; display surfaces use models.UnknownVehicleLabel instead.
const exportVehicleLabel = "Unknown"

// ExportRows produces one export row per trip with the vehicle id
// resolved to "<make> <model>", falling back to "Unknown" for dangling
// references. The header row is not included.
func ExportRows(trips []models.Trip, vehicles []models.Vehicle) [][]string {
	byID := make(map[string]models.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	rows := make([][]string, 0, len(trips))
	for _, t := range trips {
		name := exportVehicleLabel
		if v, ok := byID[t.VehicleID]; ok {
			name = v.Make + " " + v.Model
		}
		rows = append(rows, []string{
			t.Date,
			name,
			formatNumber(t.StartOdometer),
			formatNumber(t.EndOdometer),
			formatNumber(t.Distance),
			t.Destination,
			t.Company,
		})
	}
	return rows
}

// ExportCSV encodes the header plus one row per trip as CSV text.
func ExportCSV(trips []models.Trip, vehicles []models.Vehicle) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Writes to a bytes.Buffer cannot fail.
	//nolint:errcheck
	w.Write(ExportHeader)
	for _, row := range ExportRows(trips, vehicles) {
		//nolint:errcheck
		w.Write(row)
	}
	w.Flush()
	return buf.Bytes()
}

// ShareText builds the single-line summary payload for the share action.
func ShareText(trips []models.Trip) string {
	return fmt.Sprintf("Total mileage report: %.1f miles.", TotalDistance(trips))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
