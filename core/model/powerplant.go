package model

import "github.com/shopspring/decimal"

// Powerplant describes a generating unit available for the plan.
type Powerplant struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Efficiency decimal.Decimal `json:"efficiency"`
	Pmin       decimal.Decimal `json:"pmin"` // MW
	Pmax       decimal.Decimal `json:"pmax"` // MW
}

// Class returns the fuel class of the unit and whether its type is known.
func (p Powerplant) Class() (FuelClass, bool) {
	return ClassifyType(p.Type)
}

// ProductionPlanRequest is the load to serve with the units and prices
// available. The order of Powerplants is the merit order inside a fuel class.
type ProductionPlanRequest struct {
	Load        decimal.Decimal `json:"load"` // MW
	Fuels       Fuels           `json:"fuels"`
	Powerplants []Powerplant    `json:"powerplants"`
}

// Allocation is the power assigned to one unit.
type Allocation struct {
	Name string          `json:"name"`
	P    decimal.Decimal `json:"p"`

	// Class and Cost are kept for diagnostics and never serialized.
	Class FuelClass       `json:"-"`
	Cost  decimal.Decimal `json:"-"`
}

// TotalPower sums the power of all allocations.
func TotalPower(allocs []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.P)
	}
	return total
}

// TotalCost sums the fuel cost of all allocations.
func TotalCost(allocs []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Cost)
	}
	return total
}
