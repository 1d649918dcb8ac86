package model

import "github.com/shopspring/decimal"

// FuelClass is the merit-order category a generating unit belongs to.
type FuelClass int

const (
	FuelRenewable FuelClass = iota
	FuelMidTier
	FuelPeaking
)

// Raw powerplant types accepted in a production plan request.
const (
	TypeWindTurbine = "windturbine"
	TypeGasFired    = "gasfired"
	TypeTurboJet    = "turbojet"
)

// MeritOrder lists the fuel classes in dispatch priority.
var MeritOrder = []FuelClass{FuelRenewable, FuelMidTier, FuelPeaking}

// String returns the fuel burned by units of the class.
func (c FuelClass) String() string {
	switch c {
	case FuelRenewable:
		return "wind"
	case FuelMidTier:
		return "gas"
	case FuelPeaking:
		return "kerosine"
	default:
		return "unknown"
	}
}

// ClassifyType maps a raw powerplant type to its fuel class. The boolean is
// false for types that have no mapping.
func ClassifyType(raw string) (FuelClass, bool) {
	switch raw {
	case TypeWindTurbine:
		return FuelRenewable, true
	case TypeGasFired:
		return FuelMidTier, true
	case TypeTurboJet:
		return FuelPeaking, true
	default:
		return 0, false
	}
}

// Fuels holds the prices and wind availability of one request.
type Fuels struct {
	Gas      decimal.Decimal `json:"gas(euro/MWh)"`
	Kerosine decimal.Decimal `json:"kerosine(euro/MWh)"`
	CO2      decimal.Decimal `json:"co2(euro/ton)"`
	Wind     decimal.Decimal `json:"wind(%)"` // percentage of nameplate wind capacity available
}

var hundred = decimal.NewFromInt(100)

// Availability returns the wind percentage as a fraction.
func (f Fuels) Availability() decimal.Decimal {
	return f.Wind.Div(hundred)
}
