// Package guidance is the core of the service: it orchestrates the fire
// feed, danger zones, safe-place directory, coverage estimate, and routing
// into one evacuation recommendation, degrading per stage instead of failing.
package guidance

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emberwatch/evac-cli/internal/config"
	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
	"github.com/emberwatch/evac-cli/pkg/coverage"
	"github.com/emberwatch/evac-cli/pkg/firms"
	"github.com/emberwatch/evac-cli/pkg/osrm"
	"github.com/emberwatch/evac-cli/pkg/overpass"
)

// Pipeline runs the evacuation guidance stages in dependency order:
// risk first, then safe places and coverage (independent of each other),
// then routing over the surviving candidates.
type Pipeline struct {
	cfg      config.GuidanceConfig
	fires    firms.Client
	places   overpass.Client
	router   osrm.Client
	coverage coverage.Estimator
}

// New creates a Pipeline with all collaborators.
func New(cfg config.GuidanceConfig, fires firms.Client, places overpass.Client, router osrm.Client, estimator coverage.Estimator) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		fires:    fires,
		places:   places,
		router:   router,
		coverage: estimator,
	}
}

// Build produces an evacuation recommendation for the point. It never fails:
// every collaborator error is converted into a warning and the remaining
// signals still produce a complete result.
func (p *Pipeline) Build(ctx context.Context, lat, lng float64) *model.GuidanceResult {
	log := zap.L().With(zap.Float64("lat", lat), zap.Float64("lng", lng))
	log.Info("guidance: building recommendation")

	warnings := make([]string, 0, 4)

	risk := p.riskStage(ctx, lat, lng)
	if risk.warning != "" {
		warnings = append(warnings, risk.warning)
	}

	// Safe places and coverage both depend only on the risk stage's zones,
	// so they run concurrently. Warnings are collected afterwards in a fixed
	// order to keep results deterministic.
	var placesOut placeOutcome
	var coverageOut coverageOutcome

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		placesOut = p.safePlaceStage(gCtx, lat, lng, risk.zones)
		return nil
	})
	g.Go(func() error {
		coverageOut = p.coverageStage(lat, lng, risk.zones)
		return nil
	})
	_ = g.Wait()

	if placesOut.warning != "" {
		warnings = append(warnings, placesOut.warning)
	}
	if coverageOut.warning != "" {
		warnings = append(warnings, coverageOut.warning)
	}

	// Default destination is the nearest safe place; routing may override it
	// with whichever candidate it found reachable, matched back by ID.
	var destination *model.SafePlace
	if len(placesOut.places) > 0 {
		destination = &placesOut.places[0]
	}

	var route *model.Route
	if len(placesOut.places) > 0 {
		routeOut := p.routingStage(ctx, lat, lng, placesOut.places, risk.zones)
		if routeOut.warning != "" {
			warnings = append(warnings, routeOut.warning)
		}
		if routeOut.route != nil {
			route = routeOut.route
			for i := range placesOut.places {
				if placesOut.places[i].ID == routeOut.destinationID {
					destination = &placesOut.places[i]
					break
				}
			}
		}
	}

	result := p.assemble(lat, lng, risk, destination, route, warnings)

	log.Info("guidance: recommendation ready",
		zap.String("alert_level", string(result.AlertLevel)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("has_route", result.RouteDistanceKm != nil),
	)
	return result
}

// assemble turns the collected stage outcomes into the final result record.
func (p *Pipeline) assemble(lat, lng float64, risk riskOutcome, destination *model.SafePlace, route *model.Route, warnings []string) *model.GuidanceResult {
	var destinationName, destinationDirection *string
	var destinationDistanceKm *float64

	if destination != nil {
		direction := geo.Cardinal(
			geo.Point{Lat: lat, Lng: lng},
			geo.Point{Lat: destination.Latitude, Lng: destination.Longitude},
		)
		destinationDirection = &direction
		destinationName = &destination.Name
		destinationDistanceKm = &destination.DistanceKm
	}

	var routeDistanceKm, routeDurationMinutes *float64
	var steps []string
	if route != nil {
		routeDistanceKm = &route.DistanceKm
		routeDurationMinutes = &route.DurationMinutes
		for _, step := range route.Steps {
			if step.Instruction == "" {
				continue
			}
			steps = append(steps, step.Instruction)
		}
	}

	text := ComposeGuidance(TextInput{
		DestinationName:       destinationName,
		DestinationDirection:  destinationDirection,
		DestinationDistanceKm: destinationDistanceKm,
		RouteDistanceKm:       routeDistanceKm,
		RouteDurationMinutes:  routeDurationMinutes,
		RouteSteps:            steps,
		AlertLevel:            risk.alertLevel,
		ClosestFireKm:         risk.closestFireKm,
		Warnings:              warnings,
	})

	if len(steps) > maxSpokenSteps {
		steps = steps[:maxSpokenSteps]
	}

	return &model.GuidanceResult{
		GuidanceText:          text,
		AlertLevel:            risk.alertLevel,
		ClosestFireKm:         risk.closestFireKm,
		DestinationName:       destinationName,
		DestinationDirection:  destinationDirection,
		DestinationDistanceKm: destinationDistanceKm,
		RouteDistanceKm:       routeDistanceKm,
		RouteDurationMinutes:  routeDurationMinutes,
		RouteSteps:            steps,
		Warnings:              warnings,
		GeneratedAt:           time.Now().UTC(),
	}
}
