// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: a production plan was computed or rejected
//   - AckEvent: a unit acknowledged (or failed to acknowledge) its setpoint
package events
