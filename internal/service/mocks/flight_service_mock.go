package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/stretchr/testify/mock"
)

type FlightServiceMock struct {
	mock.Mock
}

func NewFlightServiceMock() *FlightServiceMock {
	return &FlightServiceMock{}
}

func (m *FlightServiceMock) GetFlight(ctx context.Context, id int64) (*model.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightServiceMock) SearchFlights(ctx context.Context, params model.FlightSearchParams) ([]*model.Flight, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Flight), args.Error(1)
}

func (m *FlightServiceMock) GetAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlightAvailability), args.Error(1)
}

func (m *FlightServiceMock) RefreshAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlightAvailability), args.Error(1)
}

func (m *FlightServiceMock) CreateFlight(ctx context.Context, req model.CreateFlightRequest) (*model.Flight, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightServiceMock) UpdateFlight(ctx context.Context, id int64, params model.UpdateFlightParams) (*model.Flight, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightServiceMock) DeleteFlight(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *FlightServiceMock) RecountAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlightAvailability), args.Error(1)
}
