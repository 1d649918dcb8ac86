// Package export writes stored production plans in formats suited to
// spreadsheets and downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/powerplan/core/dispatch/logging"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Write writes records to w in the given format.
func Write(w io.Writer, f Format, records []logging.LogRecord) error {
	switch f {
	case FormatJSON, "":
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteJSON writes the plan records to w as a JSON array.
func WriteJSON(w io.Writer, records []logging.LogRecord) error {
	if records == nil {
		records = []logging.LogRecord{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes one row per unit of each plan. Rejected plans produce a
// single row carrying the error.
func WriteCSV(w io.Writer, records []logging.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "plan_id", "unit", "fuel", "p_mw", "cost_eur", "error"}); err != nil {
		return err
	}
	for _, r := range records {
		ts := r.Timestamp.UTC().Format(time.RFC3339)
		if len(r.Units) == 0 {
			if err := cw.Write([]string{ts, r.PlanID, "", "", "", "", r.Error}); err != nil {
				return err
			}
			continue
		}
		for _, u := range r.Units {
			rec := []string{ts, r.PlanID, u.Name, u.Fuel, u.P.String(), u.Cost.StringFixed(2), r.Error}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
