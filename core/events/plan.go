package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// PlanStatus tells whether a plan request produced a plan.
type PlanStatus string

const (
	PlanComputed PlanStatus = "computed"
	PlanRejected PlanStatus = "rejected"
)

// PlanEvent is published once per production plan request.
type PlanEvent struct {
	PlanID      string
	Status      PlanStatus
	Load        decimal.Decimal
	Allocations []model.Allocation
	Unserved    decimal.Decimal
	Err         error
	Duration    time.Duration
}
