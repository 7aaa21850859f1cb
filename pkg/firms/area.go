package firms

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
)

// dayRange controls how many days of detections the area API returns.
const dayRange = 1

// FetchFires queries the FIRMS area CSV API with a bounding box covering
// radiusKm around the point, filters to the true radius, and sorts ascending
// by distance.
func (c *client) FetchFires(ctx context.Context, lat, lng, radiusKm float64) ([]model.Fire, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "firms: rate limit")
	}

	reqURL := fmt.Sprintf("%s/api/area/csv/%s/%s/%s/%d",
		c.baseURL, c.key, c.source, boundingBox(lat, lng, radiusKm), dayRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "firms: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "firms: area request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrFeed, "area API returned status %d", resp.StatusCode)
	}

	fires, err := parseAreaCSV(resp.Body, geo.Point{Lat: lat, Lng: lng}, radiusKm)
	if err != nil {
		return nil, err
	}

	sort.Slice(fires, func(i, j int) bool {
		return fires[i].DistanceKm < fires[j].DistanceKm
	})
	return fires, nil
}

// boundingBox returns the FIRMS area parameter west,south,east,north covering
// radiusKm around the point.
func boundingBox(lat, lng, radiusKm float64) string {
	latDelta := radiusKm / 111.32
	lngScale := math.Cos(lat * math.Pi / 180)
	if math.Abs(lngScale) < 1e-9 {
		lngScale = 1e-9
	}
	lngDelta := latDelta / lngScale

	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
		lng-lngDelta, lat-latDelta, lng+lngDelta, lat+latDelta)
}

// parseAreaCSV reads FIRMS area rows and keeps detections within radiusKm of
// origin. Rows that cannot be parsed are skipped rather than failing the
// whole feed.
func parseAreaCSV(r io.Reader, origin geo.Point, radiusKm float64) ([]model.Fire, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(ErrFeed, "empty or malformed CSV response")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	latIdx, okLat := col["latitude"]
	lngIdx, okLng := col["longitude"]
	if !okLat || !okLng {
		return nil, eris.Wrap(ErrFeed, "CSV response missing coordinate columns")
	}

	var fires []model.Fire
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, eris.Wrap(ErrFeed, "read CSV response")
		}

		if latIdx >= len(record) || lngIdx >= len(record) {
			continue
		}

		fireLat, latErr := strconv.ParseFloat(record[latIdx], 64)
		fireLng, lngErr := strconv.ParseFloat(record[lngIdx], 64)
		if latErr != nil || lngErr != nil {
			continue
		}

		distance := geo.HaversineKm(origin, geo.Point{Lat: fireLat, Lng: fireLng})
		if distance > radiusKm {
			continue
		}

		fire := model.Fire{
			ID:         fmt.Sprintf("firms-%.4f-%.4f", fireLat, fireLng),
			Latitude:   fireLat,
			Longitude:  fireLng,
			DistanceKm: distance,
		}
		if i, ok := col["confidence"]; ok && i < len(record) {
			fire.Confidence = record[i]
		}
		if d, ok := col["acq_date"]; ok && d < len(record) {
			fire.DetectedAt = parseAcquisition(record[d], field(record, col, "acq_time"))
		}
		fires = append(fires, fire)
	}
	return fires, nil
}

func field(record []string, col map[string]int, name string) string {
	if i, ok := col[name]; ok && i < len(record) {
		return record[i]
	}
	return ""
}

// parseAcquisition combines the FIRMS acq_date (2006-01-02) and acq_time
// (HHMM) columns. A zero time is returned when the row omits them.
func parseAcquisition(date, hhmm string) time.Time {
	if date == "" {
		return time.Time{}
	}
	for len(hhmm) < 4 {
		hhmm = "0" + hhmm
	}
	t, err := time.Parse("2006-01-02 1504", date+" "+hhmm)
	if err != nil {
		t, err = time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}
		}
	}
	return t.UTC()
}
