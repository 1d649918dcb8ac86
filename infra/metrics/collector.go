package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards plan and ack
// events to the sink. It stops when the context is canceled or the bus is
// closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("event-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := collect(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	now := time.Now()
	switch e := ev.(type) {
	case events.PlanEvent:
		if e.Status == events.PlanRejected {
			r, ok := sink.(coremetrics.RejectionRecorder)
			if !ok {
				return nil
			}
			reason := ""
			if e.Err != nil {
				reason = e.Err.Error()
			}
			return r.RecordRejection(coremetrics.RejectionEvent{PlanID: e.PlanID, Reason: reason, Time: now})
		}
		return sink.RecordPlan(coremetrics.PlanResult{
			PlanID:      e.PlanID,
			Load:        e.Load,
			Allocations: e.Allocations,
			Unserved:    e.Unserved,
			Duration:    e.Duration,
			Time:        now,
		})
	case events.AckEvent:
		r, ok := sink.(coremetrics.SetpointAckRecorder)
		if !ok {
			return nil
		}
		errStr := ""
		if e.Err != nil {
			errStr = e.Err.Error()
		}
		return r.RecordSetpointAck(coremetrics.SetpointAckEvent{
			PlanID:       e.PlanID,
			Unit:         e.Unit,
			PowerMW:      e.PowerMW,
			Acknowledged: e.Acknowledged,
			Latency:      e.Latency,
			Error:        errStr,
			Time:         now,
		})
	}
	return nil
}
