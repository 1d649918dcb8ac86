// Package logging persists the production plans computed by the service so
// they can be audited and queried later.
package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// LogRecord captures one production plan request and its outcome.
type LogRecord struct {
	Timestamp  time.Time                   `json:"timestamp"`
	PlanID     string                      `json:"plan_id"`
	Request    model.ProductionPlanRequest `json:"request"`
	Units      []UnitResult                `json:"units,omitempty"`
	TotalCost  decimal.Decimal             `json:"total_cost"`
	Unserved   decimal.Decimal             `json:"unserved"`
	Error      string                      `json:"error,omitempty"`
	DurationMS float64                     `json:"duration_ms"`
}

// UnitResult is the allocation of one unit with its diagnostic fields.
type UnitResult struct {
	Name string          `json:"name"`
	Fuel string          `json:"fuel"`
	P    decimal.Decimal `json:"p"`
	Cost decimal.Decimal `json:"cost"`
}

// NewUnitResults converts allocations into their logged form.
func NewUnitResults(allocs []model.Allocation) []UnitResult {
	out := make([]UnitResult, len(allocs))
	for i, a := range allocs {
		out[i] = UnitResult{Name: a.Name, Fuel: a.Class.String(), P: a.P, Cost: a.Cost}
	}
	return out
}

// LogQuery defines filters for retrieving records. Zero fields match
// everything.
type LogQuery struct {
	Start  time.Time
	End    time.Time
	PlanID string
	Unit   string
}

// Match reports whether rec satisfies every filter of q.
func (q LogQuery) Match(rec LogRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.PlanID != "" && rec.PlanID != q.PlanID {
		return false
	}
	if q.Unit == "" {
		return true
	}
	for _, u := range rec.Units {
		if u.Name == q.Unit {
			return true
		}
	}
	for _, p := range rec.Request.Powerplants {
		if p.Name == q.Unit {
			return true
		}
	}
	return false
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, LogRecord) error              { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]LogRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }

// scanJSONL appends the records of r matching q to dst. Malformed lines are
// skipped.
func scanJSONL(r io.Reader, q LogQuery, dst []LogRecord) ([]LogRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var rec LogRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if q.Match(rec) {
			dst = append(dst, rec)
		}
	}
	return dst, scanner.Err()
}
