package guidance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
	"github.com/emberwatch/evac-cli/pkg/firms"
)

// coverageWarning is the fixed message the coverage stage raises.
const coverageWarning = "Cell coverage may be degraded in your area"

// Each stage returns an outcome value instead of an error: a failing
// collaborator degrades the outcome and sets warning, it never aborts the
// request. Downstream stages always receive well-typed, if empty, inputs.

type riskOutcome struct {
	fires         []model.Fire
	zones         []geo.DangerZone
	closestFireKm *float64
	alertLevel    model.AlertLevel
	warning       string
}

// riskStage fetches fires around the point and derives danger zones and the
// alert level. The feed returns fires nearest-first, so the closest distance
// is read from index 0 without re-sorting; that ordering is the feed's
// documented contract.
func (p *Pipeline) riskStage(ctx context.Context, lat, lng float64) riskOutcome {
	fires, err := p.fires.FetchFires(ctx, lat, lng, p.cfg.FireSearchRadiusKm)
	if err != nil {
		zap.L().Warn("guidance: fire feed failed", zap.Error(err))
		return riskOutcome{
			alertLevel: model.AlertNone,
			warning:    fmt.Sprintf("Could not fetch fire data: %v", err),
		}
	}

	out := riskOutcome{
		fires: fires,
		zones: geo.ZonesFromFires(fires, p.cfg.DangerZoneRadiusKm),
	}
	if len(fires) > 0 {
		closest := fires[0].DistanceKm
		out.closestFireKm = &closest
	}
	out.alertLevel = firms.DetermineAlertLevel(out.closestFireKm, len(fires))

	zap.L().Debug("guidance: risk stage complete",
		zap.Int("fires", len(fires)),
		zap.String("alert_level", string(out.alertLevel)),
	)
	return out
}

type placeOutcome struct {
	places  []model.SafePlace
	warning string
}

// safePlaceStage fetches candidate destinations and drops any flagged inside
// a danger zone.
func (p *Pipeline) safePlaceStage(ctx context.Context, lat, lng float64, zones []geo.DangerZone) placeOutcome {
	places, err := p.places.FetchSafePlaces(ctx, lat, lng, p.cfg.PlaceSearchRadiusKm, zones)
	if err != nil {
		zap.L().Warn("guidance: safe place lookup failed", zap.Error(err))
		return placeOutcome{warning: fmt.Sprintf("Could not fetch safe places: %v", err)}
	}

	safe := make([]model.SafePlace, 0, len(places))
	for _, place := range places {
		if place.InDangerZone {
			continue
		}
		safe = append(safe, place)
	}

	zap.L().Debug("guidance: safe place stage complete",
		zap.Int("candidates", len(places)),
		zap.Int("outside_zones", len(safe)),
	)
	return placeOutcome{places: safe}
}

type coverageOutcome struct {
	warning string
}

// coverageStage asks the estimator whether the point still has cell coverage.
// The estimator is infallible; this stage only decides whether to warn.
func (p *Pipeline) coverageStage(lat, lng float64, zones []geo.DangerZone) coverageOutcome {
	estimate := p.coverage.Estimate(lat, lng, zones)
	if !estimate.HasCoverage {
		return coverageOutcome{warning: coverageWarning}
	}
	return coverageOutcome{}
}

type routeOutcome struct {
	route         *model.Route
	destinationID string
	warning       string
}

// maxRouteCandidates caps how many safe places are offered to the router.
const maxRouteCandidates = 5

// routingStage asks the router for the best reachable destination among the
// top candidates. A nil result with no error means no destination was
// reachable; only an actual failure raises a warning.
func (p *Pipeline) routingStage(ctx context.Context, lat, lng float64, places []model.SafePlace, zones []geo.DangerZone) routeOutcome {
	candidates := places
	if len(candidates) > maxRouteCandidates {
		candidates = candidates[:maxRouteCandidates]
	}

	result, err := p.router.RouteToNearestSafePlace(ctx, lat, lng, candidates, zones)
	if err != nil {
		zap.L().Warn("guidance: routing failed", zap.Error(err))
		return routeOutcome{warning: fmt.Sprintf("Could not calculate route: %v", err)}
	}
	if result == nil {
		return routeOutcome{}
	}

	return routeOutcome{route: &result.Route, destinationID: result.DestinationID}
}
