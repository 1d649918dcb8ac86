package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/core/dispatch/logging"
	"github.com/kilianp07/powerplan/pkg/export"
)

var (
	logsFormat string
	logsQuery  struct {
		planID, unit, start, end string
	}
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Export stored production plans",
	RunE:  runLogs,
}

func init() {
	f := logsCmd.Flags()
	f.StringVar(&logsFormat, "format", "json", "output format (json or csv)")
	f.StringVar(&logsQuery.planID, "plan-id", "", "only the plan with this ID")
	f.StringVar(&logsQuery.unit, "unit", "", "only plans involving this unit")
	f.StringVar(&logsQuery.start, "start", "", "RFC3339 lower bound")
	f.StringVar(&logsQuery.end, "end", "", "RFC3339 upper bound")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	q := logging.LogQuery{PlanID: logsQuery.planID, Unit: logsQuery.unit}
	if q.Start, err = parseTime(logsQuery.start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if q.End, err = parseTime(logsQuery.end); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	store, err := logging.Open(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), export.Format(logsFormat), recs)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
