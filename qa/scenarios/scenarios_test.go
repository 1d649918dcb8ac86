package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString("load: [1"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestScenarioRequest(t *testing.T) {
	sc, err := Load("challenge.yaml")
	if err != nil {
		t.Fatal(err)
	}
	req := sc.Request()
	if len(req.Powerplants) != 6 {
		t.Fatalf("expected 6 units, got %d", len(req.Powerplants))
	}
	if req.Fuels.Wind.String() != "60" || req.Load.String() != "480" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Powerplants[0].Efficiency.String() != "0.53" {
		t.Fatalf("unexpected efficiency %s", req.Powerplants[0].Efficiency)
	}
}
