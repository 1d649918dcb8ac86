package logging

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

func sampleRecord(planID string, ts time.Time, units ...string) LogRecord {
	req := model.ProductionPlanRequest{Load: decimal.NewFromInt(100)}
	var res []UnitResult
	for _, u := range units {
		req.Powerplants = append(req.Powerplants, model.Powerplant{Name: u, Type: model.TypeGasFired, Efficiency: decimal.RequireFromString("0.5"), Pmax: decimal.NewFromInt(100)})
		res = append(res, UnitResult{Name: u, Fuel: "gas", P: decimal.NewFromInt(100), Cost: decimal.NewFromInt(2000)})
	}
	return LogRecord{
		Timestamp: ts,
		PlanID:    planID,
		Request:   req,
		Units:     res,
		TotalCost: decimal.NewFromInt(2000),
		Unserved:  decimal.Zero,
	}
}
