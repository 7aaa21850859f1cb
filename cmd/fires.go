package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	firesLat    float64
	firesLng    float64
	firesRadius float64
)

// firesCmd hits the fire feed directly, bypassing the pipeline. Useful for
// checking the FIRMS key and seeing raw detections.
var firesCmd = &cobra.Command{
	Use:   "fires",
	Short: "List active fire detections around a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed := newFireFeed(cfg)

		fires, err := feed.FetchFires(cmd.Context(), firesLat, firesLng, firesRadius)
		if err != nil {
			return eris.Wrap(err, "fetch fires")
		}

		zap.L().Info("fires fetched", zap.Int("count", len(fires)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fires)
	},
}

func init() {
	firesCmd.Flags().Float64Var(&firesLat, "lat", 0, "latitude in degrees (required)")
	firesCmd.Flags().Float64Var(&firesLng, "lng", 0, "longitude in degrees (required)")
	firesCmd.Flags().Float64Var(&firesRadius, "radius", 50, "search radius in km")
	_ = firesCmd.MarkFlagRequired("lat")
	_ = firesCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(firesCmd)
}
