package dispatch

import "github.com/kilianp07/powerplan/core/model"

// Groups holds the powerplants of a request split by fuel class. Each group
// keeps the relative order of the request.
type Groups struct {
	byClass map[model.FuelClass][]model.Powerplant
	// Dropped lists the units whose type has no fuel class.
	Dropped []model.Powerplant
}

// Of returns the units of the given class in request order.
func (g Groups) Of(c model.FuelClass) []model.Powerplant {
	return g.byClass[c]
}

// Len returns the number of classified units.
func (g Groups) Len() int {
	n := 0
	for _, units := range g.byClass {
		n += len(units)
	}
	return n
}

// Classify groups units by fuel class. Units of unknown type are left out of
// every group.
func Classify(units []model.Powerplant) Groups {
	g := Groups{byClass: make(map[model.FuelClass][]model.Powerplant, len(model.MeritOrder))}
	for _, u := range units {
		class, ok := u.Class()
		if !ok {
			g.Dropped = append(g.Dropped, u)
			continue
		}
		g.byClass[class] = append(g.byClass[class], u)
	}
	return g
}
