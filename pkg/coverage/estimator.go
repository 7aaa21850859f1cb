// Package coverage estimates cellular coverage at a point. The estimate is a
// local heuristic over the current danger zones: it never performs I/O and
// never fails.
package coverage

import "github.com/emberwatch/evac-cli/internal/geo"

// Signal quality buckets, best to worst.
const (
	SignalGood     = "good"
	SignalDegraded = "degraded"
	SignalNone     = "none"
)

// Estimate is the coverage answer for a point.
type Estimate struct {
	HasCoverage   bool   `json:"has_coverage"`
	SignalQuality string `json:"signal_quality"`
}

// Estimator estimates cellular coverage at a point given current danger zones.
type Estimator interface {
	Estimate(lat, lng float64, zones []geo.DangerZone) Estimate
}

// Option configures the estimator.
type Option func(*estimator)

// WithInterferenceRadiusKm sets how close a danger zone must be to degrade
// signal quality.
func WithInterferenceRadiusKm(radiusKm float64) Option {
	return func(e *estimator) {
		e.interferenceKm = radiusKm
	}
}

type estimator struct {
	interferenceKm float64
}

// NewEstimator creates the default heuristic estimator.
func NewEstimator(opts ...Option) Estimator {
	e := &estimator{interferenceKm: 10}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// crowdedZoneCount is how many nearby zones it takes to assume tower loss
// even outside any single zone.
const crowdedZoneCount = 3

// Estimate reports no coverage when the point sits inside a danger zone
// (tower loss and line outages are common inside burn areas) or when several
// zones crowd the interference radius, degraded quality when a single zone
// is within the interference radius, and good coverage otherwise.
func (e *estimator) Estimate(lat, lng float64, zones []geo.DangerZone) Estimate {
	point := geo.Point{Lat: lat, Lng: lng}

	if geo.AnyContains(zones, point) {
		return Estimate{HasCoverage: false, SignalQuality: SignalNone}
	}

	near := 0
	for _, zone := range zones {
		if geo.HaversineKm(point, zone.Center)-zone.RadiusKm < e.interferenceKm {
			near++
		}
	}
	switch {
	case near >= crowdedZoneCount:
		return Estimate{HasCoverage: false, SignalQuality: SignalNone}
	case near > 0:
		return Estimate{HasCoverage: true, SignalQuality: SignalDegraded}
	default:
		return Estimate{HasCoverage: true, SignalQuality: SignalGood}
	}
}
