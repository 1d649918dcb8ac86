package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/simulator"
)

var simCfg simulator.Config

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run fake powerplants acknowledging setpoints over MQTT",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simCfg.Broker, "broker", "", "MQTT broker URL (defaults to mqtt.broker of the config)")
	f.StringVar(&simCfg.ClientID, "client-id", "", "MQTT client ID")
	f.DurationVar(&simCfg.AckLatency, "ack-latency", 0, "delay before each ack")
	f.Float64Var(&simCfg.DropRate, "drop-rate", 0, "probability of dropping an ack")
	f.StringSliceVar(&simCfg.Silent, "silent", nil, "units that never acknowledge")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sc := simCfg
	if sc.Broker == "" {
		sc.Broker = cfg.MQTT.Broker
	}
	if cfg.MQTT.SetpointTopic != "" {
		sc.SetpointTopic = cfg.MQTT.SetpointTopic
	}
	fleet, err := simulator.NewFleet(sc, nil, logger.New("simulator"))
	if err != nil {
		return err
	}
	return fleet.Run(ctx)
}
