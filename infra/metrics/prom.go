package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/core/model"
)

// PromSink exposes production plans as Prometheus metrics.
type PromSink struct {
	plans    *prometheus.CounterVec
	load     prometheus.Gauge
	unserved prometheus.Gauge
	cost     prometheus.Gauge
	setpoint *prometheus.GaugeVec
	duration prometheus.Histogram
	acks     *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	_ coremetrics.RejectionRecorder   = (*PromSink)(nil)
	_ coremetrics.SetpointAckRecorder = (*PromSink)(nil)
)

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The Prometheus server is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.plans, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerplan_plans_total",
		Help: "Total number of production plan requests by outcome",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.load, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerplan_load_mw",
		Help: "Load requested by the last production plan",
	})); err != nil {
		return nil, err
	}
	if s.unserved, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerplan_unserved_load_mw",
		Help: "Load left uncovered by the last production plan",
	})); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerplan_cost_euros",
		Help: "Hourly fuel cost of the last production plan",
	})); err != nil {
		return nil, err
	}
	if s.setpoint, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powerplan_unit_setpoint_mw",
		Help: "Power assigned to each unit by the last production plan",
	}, []string{"unit", "fuel"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "powerplan_plan_duration_seconds",
		Help:    "Time spent computing a production plan",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})); err != nil {
		return nil, err
	}
	if s.acks, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerplan_setpoint_acks_total",
		Help: "Setpoints sent to units by acknowledgment outcome",
	}, []string{"unit", "acknowledged"})); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powerplan_setpoint_ack_latency_seconds",
		Help:    "Time between setpoint publication and acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"acknowledged"})); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return c, err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return c, err
		}
		return existing, nil
	}
	return c, nil
}

// RecordPlan updates the gauges with the plan and counts it as computed.
func (s *PromSink) RecordPlan(res coremetrics.PlanResult) error {
	s.plans.WithLabelValues("computed").Inc()
	s.load.Set(res.Load.InexactFloat64())
	s.unserved.Set(res.Unserved.InexactFloat64())
	s.cost.Set(model.TotalCost(res.Allocations).InexactFloat64())
	s.duration.Observe(res.Duration.Seconds())
	for _, a := range res.Allocations {
		s.setpoint.WithLabelValues(a.Name, a.Class.String()).Set(a.P.InexactFloat64())
	}
	return nil
}

// RecordRejection counts a refused request.
func (s *PromSink) RecordRejection(coremetrics.RejectionEvent) error {
	s.plans.WithLabelValues("rejected").Inc()
	return nil
}

// RecordSetpointAck counts the acknowledgment and observes its latency.
func (s *PromSink) RecordSetpointAck(ev coremetrics.SetpointAckEvent) error {
	ack := strconv.FormatBool(ev.Acknowledged)
	s.acks.WithLabelValues(ev.Unit, ack).Inc()
	s.latency.WithLabelValues(ack).Observe(ev.Latency.Seconds())
	return nil
}
