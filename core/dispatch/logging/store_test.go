package logging

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/model"
)

func TestLogRecord_JSON(t *testing.T) {
	rec := sampleRecord("p1", time.Unix(0, 0).UTC(), "gas1")
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"timestamp", "plan_id", "request", "units", "total_cost", "unserved", "duration_ms"} {
		require.Contains(t, m, k)
	}
	require.NotContains(t, m, "error")
}

func TestNewUnitResults(t *testing.T) {
	out := NewUnitResults([]model.Allocation{{Name: "w", P: decimal.NewFromInt(5), Class: model.FuelRenewable}})
	require.Len(t, out, 1)
	require.Equal(t, "wind", out[0].Fuel)
	require.True(t, out[0].Cost.IsZero())
}

func TestLogQuery_Match(t *testing.T) {
	now := time.Now()
	rec := sampleRecord("p1", now, "gas1")
	rec.Request.Powerplants = append(rec.Request.Powerplants, model.Powerplant{Name: "dropped", Type: "nuclear"})
	cases := []struct {
		name string
		q    LogQuery
		want bool
	}{
		{"empty", LogQuery{}, true},
		{"plan", LogQuery{PlanID: "p1"}, true},
		{"other plan", LogQuery{PlanID: "p2"}, false},
		{"unit", LogQuery{Unit: "gas1"}, true},
		{"request only unit", LogQuery{Unit: "dropped"}, true},
		{"unknown unit", LogQuery{Unit: "tj1"}, false},
		{"before start", LogQuery{Start: now.Add(time.Second)}, false},
		{"after end", LogQuery{End: now.Add(-time.Second)}, false},
		{"window", LogQuery{Start: now.Add(-time.Second), End: now.Add(time.Second)}, true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.q.Match(rec), c.name)
	}
}

func TestJSONLStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Append(ctx, sampleRecord("p1", now, "gas1")))
	require.NoError(t, store.Append(ctx, sampleRecord("p2", now.Add(time.Minute), "tj1")))

	all, err := store.Query(ctx, LogQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.True(t, all[0].Units[0].P.Equal(decimal.NewFromInt(100)))

	byUnit, err := store.Query(ctx, LogQuery{Unit: "tj1"})
	require.NoError(t, err)
	require.Len(t, byUnit, 1)
	require.Equal(t, "p2", byUnit[0].PlanID)
}

func TestScanJSONL_SkipsMalformed(t *testing.T) {
	in := strings.NewReader("not json\n{\"plan_id\":\"p1\"}\n")
	out, err := scanJSONL(in, LogQuery{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		cfg  Config
		want any
	}{
		{Config{Backend: "none"}, NopStore{}},
		{Config{Backend: "jsonl", Path: filepath.Join(dir, "a.jsonl")}, &JSONLStore{}},
		{Config{Backend: "jsonl", Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 1}, &RotatingJSONLStore{}},
		{Config{Backend: "sqlite", Path: filepath.Join(dir, "c.db")}, &SQLiteStore{}},
	}
	for _, c := range cases {
		s, err := Open(c.cfg)
		require.NoError(t, err)
		require.IsType(t, c.want, s)
		require.NoError(t, s.Close())
	}
	_, err := Open(Config{Backend: "csv"})
	require.Error(t, err)
}

func TestConfig_DefaultsValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	require.Equal(t, "jsonl", c.Backend)
	require.Equal(t, "plans.jsonl", c.Path)
	require.NoError(t, c.Validate())

	none := Config{Backend: "none"}
	none.SetDefaults()
	require.Empty(t, none.Path)
	require.NoError(t, none.Validate())

	sq := Config{Backend: "sqlite"}
	sq.SetDefaults()
	require.Equal(t, "plans.db", sq.Path)
	require.NoError(t, sq.Validate())

	require.Error(t, Config{Backend: "csv", Path: "x"}.Validate())
	require.Error(t, Config{Backend: "sqlite"}.Validate())
	require.Error(t, Config{Backend: "jsonl", Path: "x", MaxBackups: -1}.Validate())
}
