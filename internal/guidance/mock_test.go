package guidance

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/emberwatch/evac-cli/internal/geo"
	"github.com/emberwatch/evac-cli/internal/model"
	"github.com/emberwatch/evac-cli/pkg/coverage"
	"github.com/emberwatch/evac-cli/pkg/osrm"
)

// --- Fire feed mock ---

type mockFireFeed struct {
	mock.Mock
}

func (m *mockFireFeed) FetchFires(ctx context.Context, lat, lng, radiusKm float64) ([]model.Fire, error) {
	args := m.Called(ctx, lat, lng, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Fire), args.Error(1)
}

// --- Place directory mock ---

type mockPlaceDirectory struct {
	mock.Mock
}

func (m *mockPlaceDirectory) FetchSafePlaces(ctx context.Context, lat, lng, radiusKm float64, zones []geo.DangerZone) ([]model.SafePlace, error) {
	args := m.Called(ctx, lat, lng, radiusKm, zones)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SafePlace), args.Error(1)
}

// --- Router mock ---

type mockRouter struct {
	mock.Mock
}

func (m *mockRouter) RouteToNearestSafePlace(ctx context.Context, lat, lng float64, destinations []model.SafePlace, zones []geo.DangerZone) (*osrm.Result, error) {
	args := m.Called(ctx, lat, lng, destinations, zones)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*osrm.Result), args.Error(1)
}

// --- Coverage estimator mock ---

type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) Estimate(lat, lng float64, zones []geo.DangerZone) coverage.Estimate {
	args := m.Called(lat, lng, zones)
	return args.Get(0).(coverage.Estimate)
}
