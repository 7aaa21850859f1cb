package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emberwatch/evac-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "evac-cli",
	Short: "Wildfire evacuation guidance",
	Long:  "Aggregates fire detections, danger zones, safe places, routing, and cell coverage into a single evacuation recommendation for a point.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
