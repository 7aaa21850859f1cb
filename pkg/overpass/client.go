// Package overpass provides the safe-place directory collaborator backed by
// the OSM Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
)

// ErrDirectory marks safe-place lookup failures.
var ErrDirectory = eris.New("overpass: place directory unavailable")

// Client looks up candidate evacuation destinations around a point.
type Client interface {
	// FetchSafePlaces returns places within radiusKm of (lat, lng), sorted
	// ascending by distance. Places inside one of the danger zones are
	// returned with InDangerZone set; the caller decides whether to drop them.
	FetchSafePlaces(ctx context.Context, lat, lng, radiusKm float64, zones []geo.DangerZone) ([]model.SafePlace, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the Overpass endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithCategories replaces the embedded category registry.
func WithCategories(categories []Category) Option {
	return func(c *client) {
		c.categories = categories
	}
}

// WithRateLimit sets the requests-per-second limit for Overpass calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
	categories []Category
	limiter    *rate.Limiter
}

// NewClient creates an Overpass client.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    "https://overpass-api.de",
		httpClient: &http.Client{Timeout: 45 * time.Second},
		categories: DefaultCategories(),
		limiter:    rate.NewLimiter(1, 1), // public instance asks for at most ~1 req/s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// overpassResponse is the JSON shape of an Overpass interpreter reply.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchSafePlaces posts an Overpass QL query covering every registered
// category and converts matching elements into SafePlace records.
func (c *client) FetchSafePlaces(ctx context.Context, lat, lng, radiusKm float64, zones []geo.DangerZone) ([]model.SafePlace, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit")
	}

	query := buildQuery(c.categories, lat, lng, radiusKm)
	form := url.Values{"data": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/interpreter", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: interpreter request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrDirectory, "interpreter returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(ErrDirectory, "read response")
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(ErrDirectory, "parse response")
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	places := make([]model.SafePlace, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		place, ok := elementToPlace(el, origin, radiusKm, c.categories, zones)
		if !ok {
			continue
		}
		places = append(places, place)
	}

	sort.Slice(places, func(i, j int) bool {
		return places[i].DistanceKm < places[j].DistanceKm
	})
	return places, nil
}

// buildQuery renders an Overpass QL union over every category selector.
func buildQuery(categories []Category, lat, lng, radiusKm float64) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, c := range categories {
		for _, sel := range c.Selectors {
			key, value, _ := strings.Cut(sel, "=")
			fmt.Fprintf(&b, `nwr["%s"="%s"](around:%.0f,%.6f,%.6f);`,
				key, value, radiusKm*1000, lat, lng)
		}
	}
	b.WriteString(");out center;")
	return b.String()
}

func elementToPlace(el overpassElement, origin geo.Point, radiusKm float64, categories []Category, zones []geo.DangerZone) (model.SafePlace, bool) {
	placeLat, placeLng := el.Lat, el.Lon
	if el.Center != nil {
		placeLat, placeLng = el.Center.Lat, el.Center.Lon
	}
	if placeLat == 0 && placeLng == 0 {
		return model.SafePlace{}, false
	}

	location := geo.Point{Lat: placeLat, Lng: placeLng}
	distance := geo.HaversineKm(origin, location)
	if distance > radiusKm {
		return model.SafePlace{}, false
	}

	name := el.Tags["name"]
	if name == "" {
		name = el.Tags["operator"]
	}
	if name == "" {
		return model.SafePlace{}, false
	}

	return model.SafePlace{
		ID:           fmt.Sprintf("%s/%d", el.Type, el.ID),
		Name:         name,
		Category:     categoryForTags(categories, el.Tags),
		Latitude:     placeLat,
		Longitude:    placeLng,
		DistanceKm:   distance,
		InDangerZone: geo.AnyContains(zones, location),
	}, true
}
