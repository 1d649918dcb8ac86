// Package metrics defines the sinks recording production plans. Sinks like
// the Prometheus and InfluxDB ones in infra/metrics register themselves by
// name; NewMetricsSink builds them from configuration and wraps several of
// them in a MultiSink. Optional recorder interfaces cover rejected requests
// and setpoint acknowledgments.
package metrics
