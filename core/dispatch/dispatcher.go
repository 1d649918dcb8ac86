package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// Dispatcher turns a production plan request into per-unit allocations.
type Dispatcher interface {
	Dispatch(req model.ProductionPlanRequest) ([]model.Allocation, error)
}

// ResultDispatcher is implemented by dispatchers able to report the exact
// totals behind their rounded allocations.
type ResultDispatcher interface {
	Compute(req model.ProductionPlanRequest) (Result, error)
}

// Result is a computed plan before serialization.
type Result struct {
	Allocations []model.Allocation
	// Committed is the exact power assigned across all units.
	Committed decimal.Decimal
	// Dropped lists the units left out because of their type.
	Dropped []model.Powerplant
}

// Unserved returns the part of load the plan does not cover.
func (r Result) Unserved(load decimal.Decimal) decimal.Decimal {
	rest := load.Sub(r.Committed)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// MeritOrderDispatcher commits wind first, then gas, then kerosine units,
// each class covering what the previous ones left.
type MeritOrderDispatcher struct {
	places    int32
	lookAhead LookAhead
}

var _ ResultDispatcher = MeritOrderDispatcher{}

// NewMeritOrderDispatcher returns a dispatcher using the rounding precision
// and look-ahead policy of cfg.
func NewMeritOrderDispatcher(cfg Config) MeritOrderDispatcher {
	la := cfg.LookAhead
	if la == "" {
		la = LookAheadCapped
	}
	return MeritOrderDispatcher{places: cfg.Places(), lookAhead: la}
}

// Dispatch validates the request and computes the allocation of every unit
// with a known type. The result lists wind units first, then gas, then
// kerosine, each in request order.
func (d MeritOrderDispatcher) Dispatch(req model.ProductionPlanRequest) ([]model.Allocation, error) {
	res, err := d.Compute(req)
	if err != nil {
		return nil, err
	}
	return res.Allocations, nil
}

// Compute is Dispatch with the exact committed power and the dropped units.
func (d MeritOrderDispatcher) Compute(req model.ProductionPlanRequest) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}
	groups := Classify(req.Powerplants)
	out := make([]model.Allocation, 0, groups.Len())
	current := decimal.Zero
	for _, class := range model.MeritOrder {
		pol := policies[class]
		var asn []assignment
		asn, current = allocate(groups.Of(class), pol.scale(req.Fuels), d.lookAhead, current, req.Load)
		for _, a := range asn {
			out = append(out, model.Allocation{
				Name:  a.unit.Name,
				P:     a.power.Round(d.places),
				Class: class,
				Cost:  pol.cost(a.unit, a.power, req.Fuels),
			})
		}
	}
	return Result{Allocations: out, Committed: current, Dropped: groups.Dropped}, nil
}
