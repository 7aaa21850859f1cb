package firms

import "github.com/emberwatch/evac-cli/internal/model"

// Classification thresholds in kilometers from the nearest detection.
const (
	criticalDistanceKm = 5
	highDistanceKm     = 10
	mediumDistanceKm   = 20
	mediumFireCount    = 5
)

// DetermineAlertLevel classifies fire risk from the nearest-fire distance and
// the number of detections. A nil closestKm means no fire was detected.
func DetermineAlertLevel(closestKm *float64, fireCount int) model.AlertLevel {
	if closestKm == nil || fireCount == 0 {
		return model.AlertNone
	}

	switch {
	case *closestKm < criticalDistanceKm:
		return model.AlertCritical
	case *closestKm < highDistanceKm:
		return model.AlertHigh
	case *closestKm < mediumDistanceKm || fireCount >= mediumFireCount:
		return model.AlertMedium
	default:
		return model.AlertLow
	}
}
