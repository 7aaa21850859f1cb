package model

import "time"

// AlertLevel classifies fire risk at a point, ordered by increasing severity.
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertLow      AlertLevel = "low"
	AlertMedium   AlertLevel = "medium"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

// Severity returns the ordinal rank of the level, none = 0.
func (l AlertLevel) Severity() int {
	switch l {
	case AlertLow:
		return 1
	case AlertMedium:
		return 2
	case AlertHigh:
		return 3
	case AlertCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether l is one of the defined levels.
func (l AlertLevel) Valid() bool {
	switch l {
	case AlertNone, AlertLow, AlertMedium, AlertHigh, AlertCritical:
		return true
	}
	return false
}

// Fire is a single detection from the fire feed. The feed returns fires
// sorted ascending by DistanceKm; consumers rely on that ordering and do
// not re-sort.
type Fire struct {
	ID         string    `json:"id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DistanceKm float64   `json:"distance_km"`
	Confidence string    `json:"confidence,omitempty"`
	DetectedAt time.Time `json:"detected_at,omitempty"`
}

// SafePlace is a candidate evacuation destination from the place directory.
// Created per request, never mutated after creation.
type SafePlace struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	DistanceKm   float64 `json:"distance_km"`
	InDangerZone bool    `json:"in_danger_zone"`
}

// RouteStep is one turn-by-turn instruction. An empty Instruction means no
// text is available for that maneuver and the step is skipped in summaries.
type RouteStep struct {
	Instruction string `json:"instruction"`
}

// Route is the routing collaborator's answer for a chosen destination.
type Route struct {
	DistanceKm      float64     `json:"distance_km"`
	DurationMinutes float64     `json:"duration_minutes"`
	Steps           []RouteStep `json:"steps"`
}

// GuidanceResult is the final evacuation recommendation. GuidanceText,
// AlertLevel and Warnings are always populated; every other field may be
// absent when the collaborator that produces it failed.
type GuidanceResult struct {
	GuidanceText          string     `json:"guidance_text"`
	AlertLevel            AlertLevel `json:"alert_level"`
	ClosestFireKm         *float64   `json:"closest_fire_km,omitempty"`
	DestinationName       *string    `json:"destination_name,omitempty"`
	DestinationDirection  *string    `json:"destination_direction,omitempty"`
	DestinationDistanceKm *float64   `json:"destination_distance_km,omitempty"`
	RouteDistanceKm       *float64   `json:"route_distance_km,omitempty"`
	RouteDurationMinutes  *float64   `json:"route_duration_minutes,omitempty"`
	RouteSteps            []string   `json:"route_steps,omitempty"`
	Warnings              []string   `json:"warnings"`
	GeneratedAt           time.Time  `json:"generated_at"`
}
