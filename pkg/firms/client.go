// Package firms provides the fire-feed collaborator: active fire detections
// from the NASA FIRMS area API, plus the alert-level classification derived
// from them.
package firms

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/emberwatch/evac-cli/internal/model"
)

// ErrFeed marks fire-feed failures (unreachable source, bad status,
// malformed payload).
var ErrFeed = eris.New("firms: fire feed unavailable")

// Client fetches active fires around a point.
type Client interface {
	// FetchFires returns detections within radiusKm of (lat, lng), sorted
	// ascending by distance. Callers rely on that ordering: index 0 is the
	// nearest fire.
	FetchFires(ctx context.Context, lat, lng, radiusKm float64) ([]model.Fire, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the FIRMS API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithSource sets the FIRMS sensor source (e.g. VIIRS_SNPP_NRT).
func WithSource(source string) Option {
	return func(c *client) {
		c.source = source
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for FIRMS calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type client struct {
	key        string
	baseURL    string
	source     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a FIRMS client with the given map key.
func NewClient(key string, opts ...Option) Client {
	c := &client{
		key:        key,
		baseURL:    "https://firms.modaps.eosdis.nasa.gov",
		source:     "VIIRS_SNPP_NRT",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(5, 1), // FIRMS allows ~5000 calls per 10 minutes
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
