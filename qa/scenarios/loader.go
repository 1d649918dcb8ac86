package scenarios

import (
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
)

type UnitDef struct {
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"`
	Efficiency decimal.Decimal `yaml:"efficiency"`
	Pmin       decimal.Decimal `yaml:"pmin"`
	Pmax       decimal.Decimal `yaml:"pmax"`
}

func (u UnitDef) ToModel() model.Powerplant {
	return model.Powerplant{
		Name:       u.Name,
		Type:       u.Type,
		Efficiency: u.Efficiency,
		Pmin:       u.Pmin,
		Pmax:       u.Pmax,
	}
}

type FuelsDef struct {
	Gas      decimal.Decimal `yaml:"gas"`
	Kerosine decimal.Decimal `yaml:"kerosine"`
	CO2      decimal.Decimal `yaml:"co2"`
	Wind     decimal.Decimal `yaml:"wind"`
}

func (f FuelsDef) ToModel() model.Fuels {
	return model.Fuels{Gas: f.Gas, Kerosine: f.Kerosine, CO2: f.CO2, Wind: f.Wind}
}

// Expected holds the outcome a scenario must produce. Powers are compared
// after rounding; an empty Error means the plan must succeed.
type Expected struct {
	Powers   map[string]string `yaml:"powers"`
	Order    []string          `yaml:"order,omitempty"`
	Cost     string            `yaml:"cost,omitempty"`
	Unserved string            `yaml:"unserved,omitempty"`
	Acked    int               `yaml:"acked"`
	Error    string            `yaml:"error,omitempty"`
}

type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	LookAhead   dispatch.LookAhead `yaml:"lookahead,omitempty"`
	Load        decimal.Decimal    `yaml:"load"`
	Fuels       FuelsDef           `yaml:"fuels"`
	Units       []UnitDef          `yaml:"units"`
	FailUnits   []string           `yaml:"fail_units,omitempty"`
	NoAckUnits  []string           `yaml:"no_ack_units,omitempty"`
	Expected    Expected           `yaml:"expected"`
}

// Request builds the production plan request described by the scenario.
func (s Scenario) Request() model.ProductionPlanRequest {
	units := make([]model.Powerplant, len(s.Units))
	for i, u := range s.Units {
		units[i] = u.ToModel()
	}
	return model.ProductionPlanRequest{Load: s.Load, Fuels: s.Fuels.ToModel(), Powerplants: units}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
