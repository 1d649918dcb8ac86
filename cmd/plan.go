package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
)

var planSummary bool

var planCmd = &cobra.Command{
	Use:   "plan [request.json]",
	Short: "Compute a production plan from a request file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planSummary, "summary", false, "print served load and total cost to stderr")
	rootCmd.AddCommand(planCmd)
}

type planEntry struct {
	Name string      `json:"name"`
	P    json.Number `json:"p"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	var req model.ProductionPlanRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	res, err := dispatch.NewMeritOrderDispatcher(cfg.Dispatch).Compute(req)
	if err != nil {
		return err
	}
	places := cfg.Dispatch.Places()
	out := make([]planEntry, len(res.Allocations))
	for i, a := range res.Allocations {
		out[i] = planEntry{Name: a.Name, P: json.Number(a.P.StringFixed(places))}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if planSummary {
		writeSummary(cmd.ErrOrStderr(), req, res)
	}
	return nil
}

func writeSummary(w io.Writer, req model.ProductionPlanRequest, res dispatch.Result) {
	_, _ = fmt.Fprintf(w, "load: %s MW\n", req.Load.String())
	_, _ = fmt.Fprintf(w, "served: %s MW\n", res.Committed.String())
	_, _ = fmt.Fprintf(w, "unserved: %s MW\n", res.Unserved(req.Load).String())
	_, _ = fmt.Fprintf(w, "cost: %s EUR/h\n", model.TotalCost(res.Allocations).StringFixed(2))
	for _, u := range res.Dropped {
		_, _ = fmt.Fprintf(w, "dropped: %s (%s)\n", u.Name, u.Type)
	}
}

// loadOrDefault loads path, falling back to the defaults when the file does
// not exist.
func loadOrDefault(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
