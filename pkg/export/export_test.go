package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/dispatch/logging"
)

func records() []logging.LogRecord {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []logging.LogRecord{
		{
			Timestamp: ts,
			PlanID:    "p1",
			Units: []logging.UnitResult{
				{Name: "wind", Fuel: "wind", P: decimal.RequireFromString("120"), Cost: decimal.Zero},
				{Name: "gas", Fuel: "gas", P: decimal.RequireFromString("300"), Cost: decimal.RequireFromString("600.456")},
			},
		},
		{Timestamp: ts, PlanID: "p2", Error: "invalid request: load must be positive"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, records()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "timestamp,plan_id,unit,fuel,p_mw,cost_eur,error", lines[0])
	assert.Equal(t, "2026-01-02T03:04:05Z,p1,wind,wind,120,0.00,", lines[1])
	assert.Equal(t, "2026-01-02T03:04:05Z,p1,gas,gas,300,600.46,", lines[2])
	assert.Equal(t, "2026-01-02T03:04:05Z,p2,,,,,invalid request: load must be positive", lines[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, records()))
	var out []logging.LogRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].PlanID)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil))
}
