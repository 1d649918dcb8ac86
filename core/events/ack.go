package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// AckEvent is published for each unit acknowledgment or error.
type AckEvent struct {
	PlanID       string
	Unit         string
	PowerMW      decimal.Decimal
	Acknowledged bool
	Err          error
	Latency      time.Duration
}
