package guidance

import (
	"fmt"
	"strings"

	"github.com/emberwatch/evac-cli/internal/model"
)

// maxSpokenSteps caps how many turn-by-turn instructions make it into the
// guidance text and the result record.
const maxSpokenSteps = 3

// fallbackClause is appended when no verified destination exists. It must not
// mention a route.
const fallbackClause = "A verified escape path is not available right now. " +
	"If conditions worsen, move away from smoke and flames, keep low, and contact emergency services."

// ComposeInstruction builds the base instruction sentence. The checks run in
// severity order and the first match wins; only the first warning is appended.
func ComposeInstruction(level model.AlertLevel, closestFireKm *float64, warnings []string) string {
	var base string
	switch {
	case level == model.AlertCritical || level == model.AlertHigh:
		base = "Immediate evacuation is recommended."
	case level == model.AlertMedium:
		base = "Move carefully and prepare to leave the area."
	case closestFireKm != nil:
		base = "No immediate evacuation is required, but stay alert."
	default:
		base = "No nearby fire was detected from the current feed."
	}

	if closestFireKm != nil {
		base += fmt.Sprintf(" The nearest fire is about %.1f kilometers away.", *closestFireKm)
	}
	if len(warnings) > 0 {
		base += fmt.Sprintf(" Warning: %s.", warnings[0])
	}
	return base
}

// TextInput carries every signal the guidance text is composed from. All
// pointer fields may be nil; the composer is pure and fully determined by its
// input.
type TextInput struct {
	DestinationName       *string
	DestinationDirection  *string
	DestinationDistanceKm *float64
	RouteDistanceKm       *float64
	RouteDurationMinutes  *float64
	RouteSteps            []string
	AlertLevel            model.AlertLevel
	ClosestFireKm         *float64
	Warnings              []string
}

// ComposeGuidance assembles the full human-readable message. Without a
// direction and a destination distance it falls back to generic safety
// guidance and never mentions a route.
func ComposeGuidance(in TextInput) string {
	intro := ComposeInstruction(in.AlertLevel, in.ClosestFireKm, in.Warnings)

	if in.DestinationDirection == nil || *in.DestinationDirection == "" || in.DestinationDistanceKm == nil {
		return intro + " " + fallbackClause
	}

	location := "toward the " + *in.DestinationDirection
	if in.DestinationName != nil && *in.DestinationName != "" {
		location += " to reach " + *in.DestinationName
	}

	// Straight-line distance is the fallback when route data is absent.
	distance := fmt.Sprintf(" for about %.1f kilometers", *in.DestinationDistanceKm)
	if in.RouteDistanceKm != nil && in.RouteDurationMinutes != nil {
		distance = fmt.Sprintf(" for about %.1f kilometers, roughly %.0f minutes",
			*in.RouteDistanceKm, *in.RouteDurationMinutes)
	}

	steps := ""
	if len(in.RouteSteps) > 0 {
		spoken := in.RouteSteps
		if len(spoken) > maxSpokenSteps {
			spoken = spoken[:maxSpokenSteps]
		}
		steps = " Follow these steps: " + strings.Join(spoken, " Then ") + "."
	}

	return fmt.Sprintf("%s Head %s%s.%s", intro, location, distance, steps)
}
