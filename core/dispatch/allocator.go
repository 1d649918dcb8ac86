package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// assignment is the exact power given to a unit before rounding.
type assignment struct {
	unit  model.Powerplant
	power decimal.Decimal
}

// allocate walks units in order and assigns each the power still needed to
// reach load, starting from the power already committed by previous classes.
// Bounds are multiplied by scale. It returns the assignments and the new
// committed total.
func allocate(units []model.Powerplant, scale decimal.Decimal, la LookAhead, current, load decimal.Decimal) ([]assignment, decimal.Decimal) {
	out := make([]assignment, 0, len(units))
	for i, u := range units {
		if current.Equal(load) {
			out = append(out, assignment{unit: u, power: decimal.Zero})
			continue
		}
		pmin := u.Pmin.Mul(scale)
		pmax := u.Pmax.Mul(scale)
		next := followingPmin(units, i).Mul(scale)
		p := optimalPower(load.Sub(current), pmin, pmax, next, la)
		current = current.Add(p)
		out = append(out, assignment{unit: u, power: p})
	}
	return out, current
}

// followingPmin returns the unscaled pmin of the unit following i, or zero for the
// last unit.
func followingPmin(units []model.Powerplant, i int) decimal.Decimal {
	if i+1 < len(units) {
		return units[i+1].Pmin
	}
	return decimal.Zero
}

// optimalPower decides the output of one unit given the power still needed.
func optimalPower(needed, pmin, pmax, nextPmin decimal.Decimal, la LookAhead) decimal.Decimal {
	if needed.GreaterThan(pmax) {
		if la == LookAheadReserve {
			rest := needed.Sub(nextPmin)
			if rest.LessThanOrEqual(pmax) && rest.GreaterThanOrEqual(pmin) {
				return rest
			}
		}
		return pmax
	}
	if needed.LessThan(pmin) {
		return decimal.Zero
	}
	return needed
}
