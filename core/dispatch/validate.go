package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Validate rejects requests the allocator cannot plan. Units with an unknown
// type are skipped here since they never reach the allocator.
func Validate(req model.ProductionPlanRequest) error {
	if !req.Load.IsPositive() {
		return &ValidationError{Field: "load", Reason: "must be positive"}
	}
	f := req.Fuels
	if f.Wind.IsNegative() || f.Wind.GreaterThan(hundred) {
		return &ValidationError{Field: "wind(%)", Reason: "must be between 0 and 100"}
	}
	if f.Gas.IsNegative() {
		return &ValidationError{Field: "gas(euro/MWh)", Reason: "must not be negative"}
	}
	if f.Kerosine.IsNegative() {
		return &ValidationError{Field: "kerosine(euro/MWh)", Reason: "must not be negative"}
	}
	if f.CO2.IsNegative() {
		return &ValidationError{Field: "co2(euro/ton)", Reason: "must not be negative"}
	}

	seen := make(map[string]struct{}, len(req.Powerplants))
	for _, p := range req.Powerplants {
		class, ok := p.Class()
		if !ok {
			continue
		}
		if p.Name == "" {
			return &ValidationError{Field: "powerplants.name", Reason: "must not be empty"}
		}
		if _, dup := seen[p.Name]; dup {
			return &ValidationError{Field: "powerplants.name", Reason: "duplicate " + p.Name}
		}
		seen[p.Name] = struct{}{}
		if p.Pmin.IsNegative() {
			return &ValidationError{Field: p.Name + ".pmin", Reason: "must not be negative"}
		}
		if p.Pmax.LessThan(p.Pmin) {
			return &ValidationError{Field: p.Name + ".pmax", Reason: "must not be lower than pmin"}
		}
		if class == model.FuelRenewable {
			continue
		}
		if !p.Efficiency.IsPositive() {
			return &InvalidUnitError{Unit: p.Name, Reason: "efficiency must be positive"}
		}
		if p.Efficiency.GreaterThan(one) {
			return &InvalidUnitError{Unit: p.Name, Reason: "efficiency must not exceed 1"}
		}
	}
	return nil
}
