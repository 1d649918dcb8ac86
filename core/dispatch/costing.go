package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// CO2PerMWh is the emission intensity of gas-fired units in tons per MWh.
var CO2PerMWh = decimal.RequireFromString("0.3")

// CostFunc returns the fuel cost of running u at p MW.
type CostFunc func(u model.Powerplant, p decimal.Decimal, f model.Fuels) decimal.Decimal

// ScaleFunc returns the factor applied to the bounds of a class.
type ScaleFunc func(f model.Fuels) decimal.Decimal

// classPolicy carries what differs between fuel classes during allocation.
type classPolicy struct {
	scale ScaleFunc
	cost  CostFunc
}

var policies = map[model.FuelClass]classPolicy{
	model.FuelRenewable: {scale: availability, cost: windCost},
	model.FuelMidTier:   {scale: unscaled, cost: gasCost},
	model.FuelPeaking:   {scale: unscaled, cost: kerosineCost},
}

func availability(f model.Fuels) decimal.Decimal { return f.Availability() }

func unscaled(model.Fuels) decimal.Decimal { return one }

func windCost(model.Powerplant, decimal.Decimal, model.Fuels) decimal.Decimal {
	return decimal.Zero
}

func gasCost(u model.Powerplant, p decimal.Decimal, f model.Fuels) decimal.Decimal {
	price := f.Gas.Add(f.CO2.Mul(CO2PerMWh))
	return price.Mul(fuelBurned(u, p))
}

func kerosineCost(u model.Powerplant, p decimal.Decimal, f model.Fuels) decimal.Decimal {
	return f.Kerosine.Mul(fuelBurned(u, p))
}

// fuelBurned returns the MWh of fuel needed to produce p MWh of electricity.
func fuelBurned(u model.Powerplant, p decimal.Decimal) decimal.Decimal {
	if p.IsZero() {
		return decimal.Zero
	}
	return p.Div(u.Efficiency)
}
