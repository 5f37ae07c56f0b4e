// Package importer converts uploaded tabular files (CSV or XLSX) into
// candidate trip fragments, tolerating inconsistent headers and
// malformed rows.
package importer

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingColumn fails the whole import: no header cell matched the
	// start or end odometer keyword sets.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNoValidTrips fails the whole import: every data row was empty,
	// malformed, or dropped.
	ErrNoValidTrips = errors.New("no valid trips found")
)

// Fragment is a partially-populated candidate trip parsed from one file
// row, prior to identifier and vehicle assignment.
type Fragment struct {
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	StartOdometer float64 `json:"start_odometer"`
	EndOdometer   float64 `json:"end_odometer"`
	Distance      float64 `json:"distance"`
	Destination   string  `json:"destination"`
	Company       string  `json:"company"`
}

// Result holds the surviving fragments of an import plus an explicit
// count of data rows that were dropped for unparsable or negative
// odometer values.
type Result struct {
	Fragments []Fragment `json:"fragments"`
	Dropped   int        `json:"dropped"`
}

// ColumnMap maps each logical trip field to a column index in the parsed
// grid, or -1 when no header cell matched. It is computed once per import
// and threaded through row processing.
type ColumnMap struct {
	Date        int
	Start       int
	End         int
	Destination int
	Company     int
	Time        int
}

// Header keyword sets for column detection. Matching is case-insensitive
// substring; the first header cell matching any keyword wins.
var (
	dateKeywords        = []string{"date"}
	startKeywords       = []string{"start", "begin"}
	endKeywords         = []string{"end", "final", "stop"}
	destinationKeywords = []string{"dest", "location", "place"}
	companyKeywords     = []string{"comp", "client", "purpose"}
	timeKeywords        = []string{"time"}
)

// DetectColumns scans the header row for each logical field's keyword set.
func DetectColumns(header []string) ColumnMap {
	return ColumnMap{
		Date:        findColumn(header, dateKeywords),
		Start:       findColumn(header, startKeywords),
		End:         findColumn(header, endKeywords),
		Destination: findColumn(header, destinationKeywords),
		Company:     findColumn(header, companyKeywords),
		Time:        findColumn(header, timeKeywords),
	}
}

func findColumn(header []string, keywords []string) int {
	for i, cell := range header {
		lower := strings.ToLower(cell)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

// Normalize converts a parsed grid (header row first) into trip fragments.
// The start and end odometer columns are mandatory; their absence fails the
// import with ErrMissingColumn. Individual rows with unparsable or negative
// odometer readings are dropped and counted, never raised as errors. An
// import in which no row survives fails with ErrNoValidTrips.
func Normalize(grid [][]string) (Result, error) {
	if len(grid) == 0 {
		return Result{}, ErrNoValidTrips
	}

	cols := DetectColumns(grid[0])
	if cols.Start < 0 {
		return Result{}, errWithColumn("start odometer")
	}
	if cols.End < 0 {
		return Result{}, errWithColumn("end odometer")
	}

	result := Result{}
	for _, row := range grid[1:] {
		if isEmptyRow(row) || len(row) < 3 {
			continue
		}

		start, okStart := coerceNumber(cell(row, cols.Start))
		end, okEnd := coerceNumber(cell(row, cols.End))
		if !okStart || !okEnd {
			result.Dropped++
			continue
		}

		distance := end - start
		if distance < 0 {
			// end < start is ambiguous (typo vs. odometer rollover);
			// drop the row instead of silently accepting it.
			result.Dropped++
			continue
		}

		frag := Fragment{
			Date:          normalizeDate(cell(row, cols.Date)),
			StartOdometer: start,
			EndOdometer:   end,
			Distance:      distance,
			Destination:   cell(row, cols.Destination),
			Company:       cell(row, cols.Company),
		}
		if cols.Time >= 0 {
			frag.StartTime = cell(row, cols.Time)
			if frag.StartTime == "" {
				frag.StartTime = "09:00"
			}
		}
		result.Fragments = append(result.Fragments, frag)
	}

	if len(result.Fragments) == 0 {
		return Result{}, ErrNoValidTrips
	}
	return result, nil
}

func errWithColumn(name string) error {
	return &missingColumnError{column: name}
}

// missingColumnError names the absent column while still matching
// ErrMissingColumn via errors.Is.
type missingColumnError struct {
	column string
}

func (e *missingColumnError) Error() string {
	return "missing required column: " + e.column
}

func (e *missingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// cell returns the trimmed value at index idx, or "" when the column is
// absent or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// coerceNumber strips every character except digits and the decimal point
// before parsing, so values like "12,345 mi" still coerce. It reports false
// for anything that does not parse to a finite number.
func coerceNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeDate accepts YYYY-MM-DD values unchanged and reformats
// slash-separated dates when parseable. Anything else passes through
// as-is; date coercion is best effort and never blocks a row.
func normalizeDate(s string) string {
	if s == "" {
		return s
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s
	}
	if strings.Contains(s, "/") {
		for _, layout := range []string{"2006/01/02", "01/02/2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return s
}
