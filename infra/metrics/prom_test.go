package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
)

func newTestPromSink(t *testing.T, reg prometheus.Registerer) *PromSink {
	t.Helper()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink, got %T", sinkIf)
	}
	return sink
}

func TestPromSink_RecordPlan(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	res := coremetrics.PlanResult{
		PlanID: "p1",
		Load:   decimal.NewFromInt(480),
		Allocations: []model.Allocation{
			{Name: "windpark1", P: decimal.NewFromInt(90), Class: model.FuelRenewable, Cost: decimal.Zero},
			{Name: "gasfiredbig1", P: decimal.RequireFromString("368.4"), Class: model.FuelMidTier, Cost: decimal.NewFromInt(7000)},
		},
		Unserved: decimal.RequireFromString("21.6"),
		Duration: time.Millisecond,
	}
	if err := sink.RecordPlan(res); err != nil {
		t.Fatalf("record: %v", err)
	}

	expected := `
# HELP powerplan_unit_setpoint_mw Power assigned to each unit by the last production plan
# TYPE powerplan_unit_setpoint_mw gauge
powerplan_unit_setpoint_mw{fuel="gas",unit="gasfiredbig1"} 368.4
powerplan_unit_setpoint_mw{fuel="wind",unit="windpark1"} 90
`
	if err := testutil.CollectAndCompare(sink.setpoint, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.plans.WithLabelValues("computed")); v != 1 {
		t.Errorf("computed plans = %v", v)
	}
	if v := testutil.ToFloat64(sink.cost); v != 7000 {
		t.Errorf("cost = %v", v)
	}
	if v := testutil.ToFloat64(sink.unserved); v != 21.6 {
		t.Errorf("unserved = %v", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}
}

func TestPromSink_RejectionsAndAcks(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	if err := sink.RecordRejection(coremetrics.RejectionEvent{PlanID: "p"}); err != nil {
		t.Fatalf("rejection: %v", err)
	}
	if err := sink.RecordSetpointAck(coremetrics.SetpointAckEvent{Unit: "tj1", Acknowledged: true, Latency: 20 * time.Millisecond}); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if v := testutil.ToFloat64(sink.plans.WithLabelValues("rejected")); v != 1 {
		t.Errorf("rejected plans = %v", v)
	}
	if v := testutil.ToFloat64(sink.acks.WithLabelValues("tj1", "true")); v != 1 {
		t.Errorf("acks = %v", v)
	}
	if c := testutil.CollectAndCount(sink.latency); c != 1 {
		t.Errorf("latency series = %d", c)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestPromSink(t, reg)
	second := newTestPromSink(t, reg)
	if err := second.RecordRejection(coremetrics.RejectionEvent{}); err != nil {
		t.Fatalf("rejection: %v", err)
	}
	if v := testutil.ToFloat64(first.plans.WithLabelValues("rejected")); v != 1 {
		t.Errorf("collectors not shared, got %v", v)
	}
}
