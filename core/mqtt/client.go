package mqtt

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client represents an MQTT client capable of sending setpoints to
// powerplants and waiting for their acknowledgments.
type Client interface {
	// SendSetpoint publishes the planned output of the given unit and returns
	// the command identifier used to track the acknowledgment.
	SendSetpoint(unit string, powerMW decimal.Decimal) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
