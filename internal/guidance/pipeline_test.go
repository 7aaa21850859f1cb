package guidance

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emberwatch/evac-cli/internal/config"
	"github.com/emberwatch/evac-cli/internal/model"
	"github.com/emberwatch/evac-cli/pkg/coverage"
	"github.com/emberwatch/evac-cli/pkg/osrm"
	"github.com/rotisserie/eris"
)

const (
	testLat = 38.50
	testLng = -120.20
)

func testConfig() config.GuidanceConfig {
	return config.GuidanceConfig{
		FireSearchRadiusKm:  50,
		PlaceSearchRadiusKm: 20,
		DangerZoneRadiusKm:  5,
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *mockFireFeed, *mockPlaceDirectory, *mockRouter, *mockEstimator) {
	t.Helper()
	feed := &mockFireFeed{}
	places := &mockPlaceDirectory{}
	router := &mockRouter{}
	estimator := &mockEstimator{}
	p := New(testConfig(), feed, places, router, estimator)
	return p, feed, places, router, estimator
}

func goodCoverage(estimator *mockEstimator) {
	estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything).
		Return(coverage.Estimate{HasCoverage: true, SignalQuality: coverage.SignalGood})
}

// Scenario A: one close fire, a reachable shelter due north, full route.
func TestBuild_FullGuidance(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).Return([]model.Fire{
		{ID: "f1", Latitude: 38.54, Longitude: -120.18, DistanceKm: 5.0},
	}, nil)

	shelter := model.SafePlace{
		ID: "node/1", Name: "Ridge Community Shelter",
		Latitude: 38.59, Longitude: -120.20, DistanceKm: 10.0,
	}
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{shelter}, nil)

	router.On("RouteToNearestSafePlace", mock.Anything, testLat, testLng, mock.Anything, mock.Anything).
		Return(&osrm.Result{
			Route: model.Route{
				DistanceKm:      12.0,
				DurationMinutes: 15.0,
				Steps: []model.RouteStep{
					{Instruction: "Head out onto Ridge Rd"},
					{Instruction: "Turn left onto Main St"},
				},
			},
			DestinationID: "node/1",
		}, nil)

	result := p.Build(context.Background(), testLat, testLng)

	require.NotNil(t, result)
	assert.True(t, strings.HasPrefix(result.GuidanceText, "Immediate evacuation is recommended."),
		"got %q", result.GuidanceText)
	assert.Equal(t, model.AlertHigh, result.AlertLevel)
	require.NotNil(t, result.ClosestFireKm)
	assert.InDelta(t, 5.0, *result.ClosestFireKm, 1e-9)
	require.NotNil(t, result.DestinationDirection)
	assert.Equal(t, "north", *result.DestinationDirection)
	require.NotNil(t, result.DestinationName)
	assert.Equal(t, "Ridge Community Shelter", *result.DestinationName)
	require.NotNil(t, result.RouteDistanceKm)
	assert.InDelta(t, 12.0, *result.RouteDistanceKm, 1e-9)
	assert.Len(t, result.RouteSteps, 2)
	assert.Empty(t, result.Warnings)
}

// Scenario B: fire feed down, no safe places.
func TestBuild_EverythingDegraded(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).
		Return(nil, eris.New("firms: fire feed unavailable"))
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{}, nil)

	result := p.Build(context.Background(), testLat, testLng)

	require.NotNil(t, result)
	assert.Equal(t, model.AlertNone, result.AlertLevel)
	assert.Nil(t, result.ClosestFireKm)
	assert.Nil(t, result.DestinationName)
	assert.Contains(t, result.GuidanceText, "A verified escape path is not available right now.")
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "Could not fetch fire data")

	// Routing is skipped entirely when there are no candidates: no warning.
	router.AssertNotCalled(t, "RouteToNearestSafePlace",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Scenario C: zero fires, places exist, routing fails.
func TestBuild_RoutingFailureFallsBackToNearestPlace(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).
		Return([]model.Fire{}, nil)

	nearest := model.SafePlace{ID: "node/1", Name: "Pinecrest Elementary", Latitude: 38.52, Longitude: -120.20, DistanceKm: 2.2}
	farther := model.SafePlace{ID: "node/2", Name: "Valley Hospital", Latitude: 38.55, Longitude: -120.25, DistanceKm: 7.1}
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{nearest, farther}, nil)

	router.On("RouteToNearestSafePlace", mock.Anything, testLat, testLng, mock.Anything, mock.Anything).
		Return(nil, eris.New("osrm: routing unavailable"))

	result := p.Build(context.Background(), testLat, testLng)

	require.NotNil(t, result)
	assert.Equal(t, model.AlertNone, result.AlertLevel)
	require.NotNil(t, result.DestinationName)
	assert.Equal(t, "Pinecrest Elementary", *result.DestinationName, "falls back to nearest by list order")
	assert.Nil(t, result.RouteDistanceKm)
	require.NotNil(t, result.DestinationDistanceKm)
	assert.InDelta(t, 2.2, *result.DestinationDistanceKm, 1e-9)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Could not calculate route") {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", result.Warnings)
}

func TestBuild_RouterOverridesDefaultDestination(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).Return([]model.Fire{}, nil)

	first := model.SafePlace{ID: "node/1", Name: "First", Latitude: 38.52, Longitude: -120.20, DistanceKm: 2.2}
	second := model.SafePlace{ID: "node/2", Name: "Second", Latitude: 38.45, Longitude: -120.20, DistanceKm: 5.6}
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{first, second}, nil)

	// The router is free to pick a destination other than the first candidate.
	router.On("RouteToNearestSafePlace", mock.Anything, testLat, testLng, mock.Anything, mock.Anything).
		Return(&osrm.Result{
			Route:         model.Route{DistanceKm: 6.0, DurationMinutes: 9.0},
			DestinationID: "node/2",
		}, nil)

	result := p.Build(context.Background(), testLat, testLng)

	require.NotNil(t, result.DestinationName)
	assert.Equal(t, "Second", *result.DestinationName)
	require.NotNil(t, result.DestinationDirection)
	assert.Equal(t, "south", *result.DestinationDirection)
}

func TestBuild_StepTruncationAndEmptySkip(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).Return([]model.Fire{}, nil)

	place := model.SafePlace{ID: "node/1", Name: "Shelter", Latitude: 38.59, Longitude: -120.20, DistanceKm: 10}
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{place}, nil)

	router.On("RouteToNearestSafePlace", mock.Anything, testLat, testLng, mock.Anything, mock.Anything).
		Return(&osrm.Result{
			Route: model.Route{
				DistanceKm:      11,
				DurationMinutes: 14,
				Steps: []model.RouteStep{
					{Instruction: "one"},
					{Instruction: ""},
					{Instruction: "two"},
					{Instruction: "three"},
					{Instruction: "four"},
				},
			},
			DestinationID: "node/1",
		}, nil)

	result := p.Build(context.Background(), testLat, testLng)

	assert.Equal(t, []string{"one", "two", "three"}, result.RouteSteps,
		"empty instructions skipped, then truncated to 3")
}

func TestBuild_CoverageWarning(t *testing.T) {
	p, feed, places, _, estimator := newTestPipeline(t)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).Return([]model.Fire{}, nil)
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{}, nil)
	estimator.On("Estimate", mock.Anything, mock.Anything, mock.Anything).
		Return(coverage.Estimate{HasCoverage: false, SignalQuality: coverage.SignalNone})

	result := p.Build(context.Background(), testLat, testLng)

	assert.Contains(t, result.Warnings, "Cell coverage may be degraded in your area")
}

func TestBuild_RouterGetsAtMostFiveCandidates(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).Return([]model.Fire{}, nil)

	var candidates []model.SafePlace
	for i := 0; i < 8; i++ {
		candidates = append(candidates, model.SafePlace{
			ID: string(rune('a' + i)), Name: "Place", Latitude: 38.52, Longitude: -120.20, DistanceKm: float64(i),
		})
	}
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return(candidates, nil)

	router.On("RouteToNearestSafePlace", mock.Anything, testLat, testLng,
		mock.MatchedBy(func(dests []model.SafePlace) bool { return len(dests) == 5 }),
		mock.Anything).
		Return(nil, nil)

	result := p.Build(context.Background(), testLat, testLng)

	require.NotNil(t, result)
	router.AssertExpectations(t)
	// nil result, nil error: no route and no warning.
	assert.Empty(t, result.Warnings)
	assert.Nil(t, result.RouteDistanceKm)
}

func TestBuild_DangerZoneFilteredPlaces(t *testing.T) {
	p, feed, places, router, estimator := newTestPipeline(t)
	goodCoverage(estimator)

	feed.On("FetchFires", mock.Anything, testLat, testLng, 50.0).Return([]model.Fire{
		{ID: "f1", Latitude: 38.52, Longitude: -120.20, DistanceKm: 2.0},
	}, nil)

	zoned := model.SafePlace{ID: "node/1", Name: "Inside", InDangerZone: true, DistanceKm: 1.0}
	safe := model.SafePlace{ID: "node/2", Name: "Outside", Latitude: 38.40, Longitude: -120.20, DistanceKm: 11.0}
	places.On("FetchSafePlaces", mock.Anything, testLat, testLng, 20.0, mock.Anything).
		Return([]model.SafePlace{zoned, safe}, nil)

	router.On("RouteToNearestSafePlace", mock.Anything, testLat, testLng,
		mock.MatchedBy(func(dests []model.SafePlace) bool {
			return len(dests) == 1 && dests[0].ID == "node/2"
		}),
		mock.Anything).
		Return(nil, nil)

	result := p.Build(context.Background(), testLat, testLng)

	require.NotNil(t, result.DestinationName)
	assert.Equal(t, "Outside", *result.DestinationName)
}
