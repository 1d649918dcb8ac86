// Package infra contains technical adapters for the plan service: the MQTT
// setpoint client, metrics sinks, the zerolog logger and Sentry reporting.
// These packages depend only on the interfaces defined in the core packages.
package infra
