package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	guideLat float64
	guideLng float64
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Build an evacuation recommendation for a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("guide"); err != nil {
			return eris.Wrap(err, "validate config")
		}

		p := newPipeline(cfg)
		result := p.Build(cmd.Context(), guideLat, guideLng)

		zap.L().Info("guidance built",
			zap.String("alert_level", string(result.AlertLevel)),
			zap.Int("warnings", len(result.Warnings)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	guideCmd.Flags().Float64Var(&guideLat, "lat", 0, "latitude in degrees (required)")
	guideCmd.Flags().Float64Var(&guideLng, "lng", 0, "longitude in degrees (required)")
	_ = guideCmd.MarkFlagRequired("lat")
	_ = guideCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(guideCmd)
}
