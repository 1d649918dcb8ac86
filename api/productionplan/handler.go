// Package productionplan exposes the production plan service over HTTP.
package productionplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/monitoring"
)

// maxBodyBytes bounds the size of a plan request.
const maxBodyBytes = 1 << 20

// Planner computes production plans.
type Planner interface {
	Plan(ctx context.Context, req model.ProductionPlanRequest) (dispatch.Plan, error)
}

// unitPower is one entry of the reply. P is printed as a JSON number with a
// fixed number of decimals.
type unitPower struct {
	Name string      `json:"name"`
	P    json.Number `json:"p"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewHandler returns the POST /productionplan handler. places is the number
// of decimals printed for each unit's power.
func NewHandler(planner Planner, places int32, log logger.Logger) http.Handler {
	return Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req model.ProductionPlanRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			log.Warnf("decode plan request: %v", err)
			writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request: %v", err))
			return
		}
		plan, err := planner.Plan(r.Context(), req)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				log.Errorf("plan failed: %v", err)
				monitoring.CaptureException(err, map[string]string{"module": "api"})
			}
			writeError(w, status, err.Error())
			return
		}
		out := make([]unitPower, len(plan.Allocations))
		for i, a := range plan.Allocations {
			out[i] = unitPower{Name: a.Name, P: json.Number(a.P.StringFixed(places))}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Plan-ID", plan.ID)
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Errorf("encode plan %s: %v", plan.ID, err)
		}
	}), log)
}

// statusFor maps planning errors to HTTP status codes.
func statusFor(err error) int {
	var verr *dispatch.ValidationError
	var uerr *dispatch.InvalidUnitError
	if errors.As(err, &verr) || errors.As(err, &uerr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Recover turns a panic in next into a 500 reply and reports it.
func Recover(next http.Handler, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, v)
				monitoring.CapturePanic(v)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
