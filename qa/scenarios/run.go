package scenarios

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	"github.com/kilianp07/powerplan/infra/mqtt"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	dispatch.ResetMetrics(prometheus.NewRegistry())

	pub := mqtt.NewMockPublisher()
	for _, u := range sc.FailUnits {
		pub.FailUnits[u] = true
	}
	for _, u := range sc.NoAckUnits {
		pub.NoAckUnits[u] = true
	}

	mgr, err := dispatch.NewPlanManager(
		dispatch.NewMeritOrderDispatcher(dispatch.Config{LookAhead: sc.LookAhead}),
		pub,
		10*time.Millisecond,
		sink,
		nil,
		logger.NopLogger{},
	)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	plan, err := mgr.Plan(context.Background(), sc.Request())
	mgr.Wait()
	if sc.Expected.Error != "" {
		if err == nil || !strings.Contains(err.Error(), sc.Expected.Error) {
			t.Fatalf("scenario %s expected error %q, got %v", sc.Name, sc.Expected.Error, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	got := make(map[string]decimal.Decimal, len(plan.Allocations))
	names := make([]string, len(plan.Allocations))
	for i, a := range plan.Allocations {
		got[a.Name] = a.P
		names[i] = a.Name
	}
	for name, want := range sc.Expected.Powers {
		p, ok := got[name]
		if !ok {
			t.Errorf("scenario %s: unit %s missing from plan", sc.Name, name)
			continue
		}
		if !p.Equal(decimal.RequireFromString(want)) {
			t.Errorf("scenario %s: unit %s expected %s MW, got %s", sc.Name, name, want, p)
		}
	}
	if len(sc.Expected.Order) > 0 && strings.Join(names, ",") != strings.Join(sc.Expected.Order, ",") {
		t.Errorf("scenario %s: expected order %v, got %v", sc.Name, sc.Expected.Order, names)
	}
	if sc.Expected.Cost != "" {
		want := decimal.RequireFromString(sc.Expected.Cost)
		if !plan.Summary.Cost.Round(2).Equal(want) {
			t.Errorf("scenario %s: expected cost %s, got %s", sc.Name, want, plan.Summary.Cost.StringFixed(2))
		}
	}
	if sc.Expected.Unserved != "" && !plan.Summary.Unserved.Equal(decimal.RequireFromString(sc.Expected.Unserved)) {
		t.Errorf("scenario %s: expected unserved %s, got %s", sc.Name, sc.Expected.Unserved, plan.Summary.Unserved)
	}
	if acked := ackedSetpoints(t, reg); acked != sc.Expected.Acked {
		t.Errorf("scenario %s expected %d acked, got %d", sc.Name, sc.Expected.Acked, acked)
	}
}

// ackedSetpoints sums the acknowledged setpoints recorded by the sink.
func ackedSetpoints(t *testing.T, reg *prometheus.Registry) int {
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0
	for _, mf := range mfs {
		if mf.GetName() != "powerplan_setpoint_acks_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "acknowledged" && l.GetValue() == "true" {
					total += int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return total
}
