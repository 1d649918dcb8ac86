package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyType(t *testing.T) {
	cases := []struct {
		raw   string
		class FuelClass
		ok    bool
	}{
		{"windturbine", FuelRenewable, true},
		{"gasfired", FuelMidTier, true},
		{"turbojet", FuelPeaking, true},
		{"nuclear", 0, false},
		{"", 0, false},
		{"GasFired", 0, false},
	}
	for _, c := range cases {
		class, ok := ClassifyType(c.raw)
		if ok != c.ok || (ok && class != c.class) {
			t.Errorf("%q: got %v/%v want %v/%v", c.raw, class, ok, c.class, c.ok)
		}
	}
}

func TestFuelClassString(t *testing.T) {
	if FuelRenewable.String() != "wind" || FuelMidTier.String() != "gas" || FuelPeaking.String() != "kerosine" {
		t.Fatal("unexpected class names")
	}
	if FuelClass(42).String() != "unknown" {
		t.Fatal("expected unknown")
	}
}

func TestRequestDecode(t *testing.T) {
	payload := `{
  "load": 480,
  "fuels": {"gas(euro/MWh)": 13.4, "kerosine(euro/MWh)": 50.8, "co2(euro/ton)": 20, "wind(%)": 60},
  "powerplants": [
    {"name": "gasfiredbig1", "type": "gasfired", "efficiency": 0.53, "pmin": 100, "pmax": 460},
    {"name": "windpark1", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 150}
  ]
}`
	var req ProductionPlanRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !req.Load.Equal(decimal.NewFromInt(480)) {
		t.Errorf("load %s", req.Load)
	}
	if !req.Fuels.Gas.Equal(decimal.RequireFromString("13.4")) {
		t.Errorf("gas %s", req.Fuels.Gas)
	}
	if !req.Fuels.Availability().Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("availability %s", req.Fuels.Availability())
	}
	if len(req.Powerplants) != 2 || req.Powerplants[0].Name != "gasfiredbig1" {
		t.Fatalf("powerplants %+v", req.Powerplants)
	}
	if c, ok := req.Powerplants[1].Class(); !ok || c != FuelRenewable {
		t.Errorf("class %v %v", c, ok)
	}
}

func TestAllocationHidesCost(t *testing.T) {
	a := Allocation{Name: "gas1", P: decimal.NewFromInt(10), Class: FuelMidTier, Cost: decimal.NewFromInt(99)}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["Cost"]; ok {
		t.Fatal("cost must not be serialized")
	}
	if len(m) != 2 {
		t.Fatalf("unexpected fields %v", m)
	}
}

func TestTotals(t *testing.T) {
	allocs := []Allocation{
		{P: decimal.NewFromInt(120)},
		{P: decimal.NewFromInt(300), Cost: decimal.NewFromInt(600)},
		{P: decimal.NewFromInt(60), Cost: decimal.NewFromInt(200)},
	}
	if !TotalPower(allocs).Equal(decimal.NewFromInt(480)) {
		t.Errorf("power %s", TotalPower(allocs))
	}
	if !TotalCost(allocs).Equal(decimal.NewFromInt(800)) {
		t.Errorf("cost %s", TotalCost(allocs))
	}
}
