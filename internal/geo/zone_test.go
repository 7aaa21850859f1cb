package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwatch/evac-cli/internal/model"
)

func TestNewCircleZone_Containment(t *testing.T) {
	center := Point{Lat: 38.5, Lng: -120.2}
	zone := NewCircleZone(center, 5)

	assert.True(t, zone.Contains(center))
	assert.True(t, zone.Contains(Point{Lat: 38.52, Lng: -120.2}), "about 2 km north of center")
	assert.False(t, zone.Contains(Point{Lat: 38.6, Lng: -120.2}), "about 11 km north of center")
	assert.False(t, zone.Contains(Point{Lat: 39.5, Lng: -121.2}))
}

func TestZonesFromFires(t *testing.T) {
	fires := []model.Fire{
		{ID: "f1", Latitude: 38.5, Longitude: -120.2, DistanceKm: 3.1},
		{ID: "f2", Latitude: 38.7, Longitude: -120.4, DistanceKm: 9.8},
	}

	zones := ZonesFromFires(fires, 5)
	require.Len(t, zones, 2)
	assert.True(t, zones[0].Contains(Point{Lat: 38.5, Lng: -120.2}))
	assert.True(t, zones[1].Contains(Point{Lat: 38.7, Lng: -120.4}))
	assert.False(t, zones[0].Contains(Point{Lat: 38.7, Lng: -120.4}),
		"each zone buffers only its own fire")
}

func TestAnyContains(t *testing.T) {
	zones := []DangerZone{
		NewCircleZone(Point{Lat: 38.5, Lng: -120.2}, 5),
		NewCircleZone(Point{Lat: 38.9, Lng: -120.9}, 5),
	}

	assert.True(t, AnyContains(zones, Point{Lat: 38.9, Lng: -120.9}))
	assert.False(t, AnyContains(zones, Point{Lat: 40.0, Lng: -122.0}))
	assert.False(t, AnyContains(nil, Point{Lat: 38.5, Lng: -120.2}))
}

func TestZonesFromFires_Empty(t *testing.T) {
	assert.Empty(t, ZonesFromFires(nil, 5))
}
