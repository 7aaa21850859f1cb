package main

import (
	"github.com/emberwatch/evac-cli/internal/config"
	"github.com/emberwatch/evac-cli/internal/guidance"
	"github.com/emberwatch/evac-cli/pkg/coverage"
	"github.com/emberwatch/evac-cli/pkg/firms"
	"github.com/emberwatch/evac-cli/pkg/osrm"
	"github.com/emberwatch/evac-cli/pkg/overpass"
)

// newFireFeed builds the FIRMS client from config.
func newFireFeed(cfg *config.Config) firms.Client {
	return firms.NewClient(cfg.Firms.Key,
		firms.WithBaseURL(cfg.Firms.BaseURL),
		firms.WithSource(cfg.Firms.Source),
		firms.WithRateLimit(cfg.Firms.RateLimit),
	)
}

// newPlaceDirectory builds the Overpass client from config.
func newPlaceDirectory(cfg *config.Config) overpass.Client {
	return overpass.NewClient(
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithRateLimit(cfg.Overpass.RateLimit),
	)
}

// newPipeline wires every collaborator into the guidance pipeline.
func newPipeline(cfg *config.Config) *guidance.Pipeline {
	router := osrm.NewClient(
		osrm.WithBaseURL(cfg.OSRM.BaseURL),
		osrm.WithProfile(cfg.OSRM.Profile),
		osrm.WithRateLimit(cfg.OSRM.RateLimit),
	)
	estimator := coverage.NewEstimator(
		coverage.WithInterferenceRadiusKm(cfg.Coverage.InterferenceRadiusKm),
	)

	return guidance.New(cfg.Guidance, newFireFeed(cfg), newPlaceDirectory(cfg), router, estimator)
}
