package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/dispatch/logging"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Plan is a production plan computed by the PlanManager.
type Plan struct {
	ID          string
	Allocations []model.Allocation
	Summary     Summary
}

// Summary gives the totals of a plan.
type Summary struct {
	Load     decimal.Decimal
	Served   decimal.Decimal
	Unserved decimal.Decimal
	Cost     decimal.Decimal
	// Dropped names the units whose type is not dispatchable.
	Dropped []string
}

// PlanManager runs a Dispatcher for the service. Every plan gets an ID, is
// persisted to the log store and reported as an event. When a publisher is
// set, the allocations are sent to the units as setpoints in the background.
type PlanManager struct {
	dispatcher Dispatcher
	publisher  mqtt.Client
	ackTimeout time.Duration
	logger     logger.Logger
	metrics    metrics.MetricsSink
	bus        eventbus.EventBus

	mu    sync.Mutex
	store logging.LogStore

	inflight sync.WaitGroup
	now      func() time.Time
}

// NewPlanManager creates a new manager. publisher, sink and bus are
// optional. If ackTimeout is zero, a default of five seconds is used.
func NewPlanManager(dispatcher Dispatcher, publisher mqtt.Client, ackTimeout time.Duration, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*PlanManager, error) {
	if dispatcher == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewPlanManager")
	}
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &PlanManager{
		dispatcher: dispatcher,
		publisher:  publisher,
		ackTimeout: ackTimeout,
		logger:     log,
		metrics:    sink,
		bus:        bus,
		now:        time.Now,
	}, nil
}

// SetLogStore configures the store used to persist plan logs.
func (m *PlanManager) SetLogStore(store logging.LogStore) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// LogStore returns the configured store, or nil.
func (m *PlanManager) LogStore() logging.LogStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store
}

// Plan computes the production plan for req. Validation errors are returned
// unchanged so callers can tell bad input from internal failures.
func (m *PlanManager) Plan(ctx context.Context, req model.ProductionPlanRequest) (Plan, error) {
	id := uuid.NewString()
	start := m.now()
	m.logger.Debugf("plan %s: begin with %d powerplants", id, len(req.Powerplants))
	m.logger.Debugw("plan request", map[string]any{"plan_id": id, "request": req})

	res, err := m.compute(req)
	elapsed := time.Since(start)
	planCompute.Observe(elapsed.Seconds())
	if err != nil {
		m.logger.Warnf("plan %s rejected: %v", id, err)
		m.emit(events.PlanEvent{PlanID: id, Status: events.PlanRejected, Load: req.Load, Err: err, Duration: elapsed})
		m.persist(ctx, logging.LogRecord{
			Timestamp:  start,
			PlanID:     id,
			Request:    req,
			Error:      err.Error(),
			DurationMS: durationMS(elapsed),
		})
		return Plan{}, err
	}

	plan := Plan{ID: id, Allocations: res.Allocations, Summary: summarize(req, res)}
	for _, u := range plan.Summary.Dropped {
		m.logger.Debugf("plan %s: unit %s has no dispatchable type", id, u)
	}
	if plan.Summary.Unserved.IsPositive() {
		partialPlans.Inc()
		m.logger.Warnf("plan %s: %s MW of load left unserved", id, plan.Summary.Unserved.String())
	}
	m.logger.Debugw("plan reply", map[string]any{"plan_id": id, "allocations": res.Allocations})
	m.logger.Infof("plan %s computed in %s: served %s MW for %s EUR/h", id, elapsed, plan.Summary.Served.String(), plan.Summary.Cost.StringFixed(2))

	m.emit(events.PlanEvent{
		PlanID:      id,
		Status:      events.PlanComputed,
		Load:        req.Load,
		Allocations: res.Allocations,
		Unserved:    plan.Summary.Unserved,
		Duration:    elapsed,
	})
	m.persist(ctx, logging.LogRecord{
		Timestamp:  start,
		PlanID:     id,
		Request:    req,
		Units:      logging.NewUnitResults(res.Allocations),
		TotalCost:  plan.Summary.Cost,
		Unserved:   plan.Summary.Unserved,
		DurationMS: durationMS(elapsed),
	})
	if m.publisher != nil {
		m.inflight.Add(1)
		go func() {
			defer m.inflight.Done()
			m.sendSetpoints(id, res.Allocations)
		}()
	}
	m.logger.Debugf("plan %s: end", id)
	return plan, nil
}

func (m *PlanManager) compute(req model.ProductionPlanRequest) (Result, error) {
	if rd, ok := m.dispatcher.(ResultDispatcher); ok {
		return rd.Compute(req)
	}
	allocs, err := m.dispatcher.Dispatch(req)
	if err != nil {
		return Result{}, err
	}
	return Result{Allocations: allocs, Committed: model.TotalPower(allocs)}, nil
}

func summarize(req model.ProductionPlanRequest, res Result) Summary {
	s := Summary{
		Load:     req.Load,
		Served:   model.TotalPower(res.Allocations),
		Unserved: res.Unserved(req.Load),
		Cost:     model.TotalCost(res.Allocations),
	}
	for _, u := range res.Dropped {
		s.Dropped = append(s.Dropped, u.Name)
	}
	return s
}

// sendSetpoints publishes every allocation concurrently and reports each
// acknowledgment.
func (m *PlanManager) sendSetpoints(planID string, allocs []model.Allocation) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		acked int
	)
	for _, a := range allocs {
		wg.Add(1)
		go func(a model.Allocation) {
			defer wg.Done()
			ok, latency, err := m.sendAndWait(a.Name, a.P)
			if err != nil {
				m.logger.Warnf("plan %s: setpoint for %s: %v", planID, a.Name, err)
			}
			if ok {
				mu.Lock()
				acked++
				mu.Unlock()
			}
			m.emit(events.AckEvent{
				PlanID:       planID,
				Unit:         a.Name,
				PowerMW:      a.P,
				Acknowledged: ok,
				Err:          err,
				Latency:      latency,
			})
		}(a)
	}
	wg.Wait()
	if len(allocs) > 0 {
		setpointAckRate.Set(float64(acked) / float64(len(allocs)))
	}
}

// sendAndWait sends the setpoint and waits for an acknowledgment while
// measuring the latency.
func (m *PlanManager) sendAndWait(unit string, p decimal.Decimal) (bool, time.Duration, error) {
	start := time.Now()
	cmdID, err := m.publisher.SendSetpoint(unit, p)
	if err != nil {
		setpointPublished.WithLabelValues("failure").Inc()
		return false, time.Since(start), err
	}
	setpointPublished.WithLabelValues("success").Inc()
	ack, err := m.publisher.WaitForAck(cmdID, m.ackTimeout)
	return ack && err == nil, time.Since(start), err
}

// emit publishes ev on the bus, or records it on the sink directly when no
// bus is configured.
func (m *PlanManager) emit(ev eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
		return
	}
	var err error
	switch e := ev.(type) {
	case events.PlanEvent:
		err = m.recordPlan(e)
	case events.AckEvent:
		if r, ok := m.metrics.(metrics.SetpointAckRecorder); ok {
			err = r.RecordSetpointAck(metrics.SetpointAckEvent{
				PlanID:       e.PlanID,
				Unit:         e.Unit,
				PowerMW:      e.PowerMW,
				Acknowledged: e.Acknowledged,
				Latency:      e.Latency,
				Error:        errString(e.Err),
				Time:         m.now(),
			})
		}
	}
	if err != nil {
		m.logger.Errorf("metrics error: %v", err)
	}
}

func (m *PlanManager) recordPlan(e events.PlanEvent) error {
	if e.Status == events.PlanRejected {
		if r, ok := m.metrics.(metrics.RejectionRecorder); ok {
			return r.RecordRejection(metrics.RejectionEvent{PlanID: e.PlanID, Reason: errString(e.Err), Time: m.now()})
		}
		return nil
	}
	return m.metrics.RecordPlan(metrics.PlanResult{
		PlanID:      e.PlanID,
		Load:        e.Load,
		Allocations: e.Allocations,
		Unserved:    e.Unserved,
		Duration:    e.Duration,
		Time:        m.now(),
	})
}

func (m *PlanManager) persist(ctx context.Context, rec logging.LogRecord) {
	store := m.LogStore()
	if store == nil {
		return
	}
	// the record outlives the request
	if err := store.Append(context.WithoutCancel(ctx), rec); err != nil {
		m.logger.Errorf("plan %s: log store: %v", rec.PlanID, err)
	}
}

// Wait blocks until the setpoints of every computed plan have been sent and
// acknowledged or timed out.
func (m *PlanManager) Wait() {
	m.inflight.Wait()
}

// Close waits for pending setpoints and releases the log store.
func (m *PlanManager) Close() error {
	m.Wait()
	if store := m.LogStore(); store != nil {
		return store.Close()
	}
	return nil
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
