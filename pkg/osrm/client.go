// Package osrm provides the routing collaborator backed by an OSRM server.
package osrm

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
)

// ErrRouting marks routing failures (server unreachable, bad status,
// malformed payload).
var ErrRouting = eris.New("osrm: routing unavailable")

// Result pairs a computed route with the destination OSRM picked. The chosen
// destination is identified by ID; it is not necessarily the first candidate.
type Result struct {
	Route         model.Route
	DestinationID string
}

// Client finds a road route from a point to the best reachable destination.
type Client interface {
	// RouteToNearestSafePlace routes to the fastest reachable of the given
	// destinations. It returns nil (with no error) when none of them is
	// reachable by road.
	RouteToNearestSafePlace(ctx context.Context, lat, lng float64, destinations []model.SafePlace, zones []geo.DangerZone) (*Result, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the OSRM server URL.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithProfile sets the OSRM routing profile (default driving).
func WithProfile(profile string) Option {
	return func(c *client) {
		c.profile = profile
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for OSRM calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an OSRM client.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    "https://router.project-osrm.org",
		profile:    "driving",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(1, 1), // demo server etiquette
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
