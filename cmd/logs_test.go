package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/dispatch/logging"
)

func TestLogsCommand_CSV(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "plans.jsonl")
	store, err := logging.NewJSONLStore(storePath)
	require.NoError(t, err)
	for i, unit := range []string{"gas1", "wind1"} {
		require.NoError(t, store.Append(context.Background(), logging.LogRecord{
			Timestamp: time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC),
			PlanID:    fmt.Sprintf("plan-%d", i),
			Units:     []logging.UnitResult{{Name: unit, Fuel: "gas", P: decimal.NewFromInt(10), Cost: decimal.NewFromInt(5)}},
		}))
	}
	require.NoError(t, store.Close())

	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("logging:\n  backend: jsonl\n  path: "+storePath+"\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"logs", "-c", cfgFile, "--format", "csv", "--unit", "wind1"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		logsFormat = "json"
		logsQuery.unit = ""
	})
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "2026-01-01T01:00:00Z,plan-1,wind1,gas,10,5.00,", lines[1])
}

func TestLogsCommand_BadStart(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"logs", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "--start", "yesterday"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		logsQuery.start = ""
	})
	require.Error(t, rootCmd.Execute())
}
