package productionplan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/dispatch/logging"
	"github.com/kilianp07/powerplan/core/model"
)

type memStore struct {
	recs []logging.LogRecord
	err  error
}

func (m *memStore) Append(_ context.Context, r logging.LogRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q logging.LogQuery) ([]logging.LogRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var res []logging.LogRecord
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	now := time.Now().UTC()
	for _, id := range []string{"p1", "p2"} {
		if err := store.Append(context.Background(), logging.LogRecord{
			Timestamp: now,
			PlanID:    id,
			Request:   model.ProductionPlanRequest{Load: decimal.NewFromInt(10)},
			Units:     []logging.UnitResult{{Name: "gas-" + id, Fuel: "gas", P: decimal.NewFromInt(10)}},
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewLogHandler(store, "tok")

	req := httptest.NewRequest(http.MethodGet, "/productionplan/logs?unit=gas-p2", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].PlanID != "p2" {
		t.Fatalf("expected plan p2, got %+v", out)
	}

	req = httptest.NewRequest(http.MethodGet, "/productionplan/logs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/productionplan/logs?plan_id=none", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty list, got %q", rr.Body.String())
	}
}

func TestLogHandler_BadRequests(t *testing.T) {
	h := NewLogHandler(&memStore{}, "")
	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodPost, "/productionplan/logs", http.StatusMethodNotAllowed},
		{http.MethodGet, "/productionplan/logs?start=yesterday", http.StatusBadRequest},
		{http.MethodGet, "/productionplan/logs?start=2024-01-02T00:00:00Z&end=2024-01-01T00:00:00Z", http.StatusBadRequest},
		{http.MethodGet, "/productionplan/logs?start=2024-01-01T00:00:00Z", http.StatusOK},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(c.method, c.target, nil))
		if rr.Code != c.status {
			t.Errorf("%s %s: expected %d got %d", c.method, c.target, c.status, rr.Code)
		}
	}
}

func TestLogHandler_StoreError(t *testing.T) {
	h := NewLogHandler(&memStore{err: errors.New("disk full")}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/productionplan/logs", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}
