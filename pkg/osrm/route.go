package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
)

// tableResponse is the OSRM table service reply: durations from the single
// source (index 0) to each destination.
type tableResponse struct {
	Code      string       `json:"code"`
	Durations [][]*float64 `json:"durations"`
}

// routeResponse is the OSRM route service reply.
type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
		Legs     []struct {
			Steps []osrmStep `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type osrmStep struct {
	Name     string `json:"name"`
	Maneuver struct {
		Type     string `json:"type"`
		Modifier string `json:"modifier"`
	} `json:"maneuver"`
}

// RouteToNearestSafePlace picks the fastest reachable destination with the
// table service, then fetches a turn-by-turn route to it. A destination that
// sits inside a danger zone is never routed to; OSRM itself cannot constrain
// the path by polygon, so zones only gate the destination choice here.
func (c *client) RouteToNearestSafePlace(ctx context.Context, lat, lng float64, destinations []model.SafePlace, zones []geo.DangerZone) (*Result, error) {
	candidates := make([]model.SafePlace, 0, len(destinations))
	for _, d := range destinations {
		if geo.AnyContains(zones, geo.Point{Lat: d.Latitude, Lng: d.Longitude}) {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	chosen, err := c.pickFastest(ctx, lat, lng, candidates)
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		return nil, nil
	}

	route, err := c.fetchRoute(ctx, lat, lng, *chosen)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, nil
	}

	return &Result{Route: *route, DestinationID: chosen.ID}, nil
}

// pickFastest queries the table service and returns the destination with the
// lowest driving duration, or nil when none is reachable.
func (c *client) pickFastest(ctx context.Context, lat, lng float64, candidates []model.SafePlace) (*model.SafePlace, error) {
	if len(candidates) == 1 {
		return &candidates[0], nil
	}

	coords := make([]string, 0, len(candidates)+1)
	coords = append(coords, fmt.Sprintf("%.6f,%.6f", lng, lat))
	for _, d := range candidates {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", d.Longitude, d.Latitude))
	}

	reqURL := fmt.Sprintf("%s/table/v1/%s/%s?sources=0&annotations=duration",
		c.baseURL, c.profile, strings.Join(coords, ";"))

	var parsed tableResponse
	if err := c.get(ctx, reqURL, &parsed); err != nil {
		return nil, err
	}
	if parsed.Code != "Ok" || len(parsed.Durations) == 0 {
		return nil, eris.Wrapf(ErrRouting, "table service code %q", parsed.Code)
	}

	durations := parsed.Durations[0]
	var chosen *model.SafePlace
	best := 0.0
	for i := range candidates {
		// durations[0] is source-to-source.
		if i+1 >= len(durations) || durations[i+1] == nil {
			continue
		}
		if chosen == nil || *durations[i+1] < best {
			chosen = &candidates[i]
			best = *durations[i+1]
		}
	}
	return chosen, nil
}

// fetchRoute fetches the turn-by-turn route to the destination, or nil when
// OSRM reports no route.
func (c *client) fetchRoute(ctx context.Context, lat, lng float64, dest model.SafePlace) (*model.Route, error) {
	reqURL := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=false&steps=true",
		c.baseURL, c.profile, lng, lat, dest.Longitude, dest.Latitude)

	var parsed routeResponse
	if err := c.get(ctx, reqURL, &parsed); err != nil {
		return nil, err
	}
	if parsed.Code == "NoRoute" || len(parsed.Routes) == 0 {
		return nil, nil
	}
	if parsed.Code != "Ok" {
		return nil, eris.Wrapf(ErrRouting, "route service code %q", parsed.Code)
	}

	best := parsed.Routes[0]
	route := &model.Route{
		DistanceKm:      best.Distance / 1000,
		DurationMinutes: best.Duration / 60,
	}
	for _, leg := range best.Legs {
		for _, step := range leg.Steps {
			route.Steps = append(route.Steps, model.RouteStep{Instruction: stepInstruction(step)})
		}
	}
	return route, nil
}

func (c *client) get(ctx context.Context, reqURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "osrm: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "osrm: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "osrm: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Wrapf(ErrRouting, "server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(ErrRouting, "read response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(ErrRouting, "parse response")
	}
	return nil
}

// stepInstruction renders a human-readable instruction from an OSRM step.
// Steps OSRM gives no usable text for come back empty and are skipped by the
// guidance composer.
func stepInstruction(step osrmStep) string {
	verb := ""
	switch step.Maneuver.Type {
	case "depart":
		verb = "Head out"
	case "arrive":
		return "Arrive at your destination"
	case "turn", "end of road", "fork":
		if step.Maneuver.Modifier != "" {
			verb = "Turn " + step.Maneuver.Modifier
		}
	case "continue":
		verb = "Continue"
	case "merge":
		verb = "Merge"
	case "roundabout", "rotary":
		verb = "Take the roundabout"
	case "on ramp":
		verb = "Take the ramp"
	case "off ramp":
		verb = "Take the exit"
	}

	if verb == "" {
		return ""
	}
	if step.Name != "" {
		return verb + " onto " + step.Name
	}
	return verb
}
