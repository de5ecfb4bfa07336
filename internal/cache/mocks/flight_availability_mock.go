package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/stretchr/testify/mock"
)

type FlightAvailabilityCacheMock struct {
	mock.Mock
}

func NewFlightAvailabilityCacheMock() *FlightAvailabilityCacheMock {
	return &FlightAvailabilityCacheMock{}
}

func (m *FlightAvailabilityCacheMock) Get(ctx context.Context, flightID int64) (*model.FlightAvailability, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlightAvailability), args.Error(1)
}

func (m *FlightAvailabilityCacheMock) Set(ctx context.Context, availability *model.FlightAvailability) (bool, error) {
	args := m.Called(ctx, availability)
	return args.Bool(0), args.Error(1)
}

func (m *FlightAvailabilityCacheMock) Invalidate(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}
