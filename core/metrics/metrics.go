package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// PlanResult is a computed production plan to be recorded.
type PlanResult struct {
	PlanID      string
	Load        decimal.Decimal
	Allocations []model.Allocation
	// Unserved is the part of the load no unit could cover.
	Unserved decimal.Decimal
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records production plans for observability purposes.
type MetricsSink interface {
	RecordPlan(res PlanResult) error
}

// RejectionEvent captures a request refused before allocation.
type RejectionEvent struct {
	PlanID string
	Reason string
	Time   time.Time
}

// RejectionRecorder records rejected requests.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// SetpointAckEvent captures the outcome of a setpoint sent to a unit.
type SetpointAckEvent struct {
	PlanID       string
	Unit         string
	PowerMW      decimal.Decimal
	Acknowledged bool
	Latency      time.Duration
	Error        string
	Time         time.Time
}

// SetpointAckRecorder records setpoint acknowledgments.
type SetpointAckRecorder interface {
	RecordSetpointAck(ev SetpointAckEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanResult) error              { return nil }
func (NopSink) RecordRejection(RejectionEvent) error     { return nil }
func (NopSink) RecordSetpointAck(SetpointAckEvent) error { return nil }
