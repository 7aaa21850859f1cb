package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	placesLat    float64
	placesLng    float64
	placesRadius float64
)

// placesCmd queries the safe-place directory directly, with no danger zones
// applied.
var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "List candidate safe places around a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		directory := newPlaceDirectory(cfg)

		places, err := directory.FetchSafePlaces(cmd.Context(), placesLat, placesLng, placesRadius, nil)
		if err != nil {
			return eris.Wrap(err, "fetch safe places")
		}

		zap.L().Info("places fetched", zap.Int("count", len(places)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(places)
	},
}

func init() {
	placesCmd.Flags().Float64Var(&placesLat, "lat", 0, "latitude in degrees (required)")
	placesCmd.Flags().Float64Var(&placesLng, "lng", 0, "longitude in degrees (required)")
	placesCmd.Flags().Float64Var(&placesRadius, "radius", 20, "search radius in km")
	_ = placesCmd.MarkFlagRequired("lat")
	_ = placesCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(placesCmd)
}
