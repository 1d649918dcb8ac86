package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	planCompute       prometheus.Histogram
	partialPlans      prometheus.Counter
	setpointPublished *prometheus.CounterVec
	setpointAckRate   prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Histogram, prometheus.Counter, *prometheus.CounterVec, prometheus.Gauge) {
	compute := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_plan_compute_seconds",
		Help:    "Time spent validating and allocating a production plan",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	})
	partial := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_partial_plans_total",
		Help: "Plans whose units could not cover the whole load",
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_setpoint_publish_total",
		Help: "Setpoint publications by result",
	}, []string{"result"})
	ack := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_setpoint_ack_rate",
		Help: "Share of the setpoints of the last plan that were acknowledged",
	})
	return compute, partial, published, ack
}

func init() {
	planCompute, partialPlans, setpointPublished, setpointAckRate = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(planCompute, partialPlans, setpointPublished, setpointAckRate)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	planCompute, partialPlans, setpointPublished, setpointAckRate = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
