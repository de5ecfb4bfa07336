package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type FlightRepositoryMock struct {
	mock.Mock
}

func NewFlightRepositoryMock() *FlightRepositoryMock {
	return &FlightRepositoryMock{}
}

func (m *FlightRepositoryMock) FindByID(ctx context.Context, id int64) (*model.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightRepositoryMock) FindSections(ctx context.Context, flightID int64) ([]*model.Section, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Section), args.Error(1)
}

func (m *FlightRepositoryMock) Search(ctx context.Context, params model.FlightSearchParams) ([]*model.Flight, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Flight), args.Error(1)
}

func (m *FlightRepositoryMock) Create(ctx context.Context, tx pgx.Tx, flight *model.Flight) (*model.Flight, error) {
	args := m.Called(ctx, tx, flight)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightRepositoryMock) CreateSections(ctx context.Context, tx pgx.Tx, flightID int64, sections []*model.Section) error {
	args := m.Called(ctx, tx, flightID, sections)
	return args.Error(0)
}

func (m *FlightRepositoryMock) DeleteSections(ctx context.Context, tx pgx.Tx, flightID int64) error {
	args := m.Called(ctx, tx, flightID)
	return args.Error(0)
}

func (m *FlightRepositoryMock) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int64) (*model.Flight, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightRepositoryMock) Update(ctx context.Context, tx pgx.Tx, flight *model.Flight) (*model.Flight, error) {
	args := m.Called(ctx, tx, flight)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flight), args.Error(1)
}

func (m *FlightRepositoryMock) RecountAvailableSeats(ctx context.Context, tx pgx.Tx, flightID int64) (int, error) {
	args := m.Called(ctx, tx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *FlightRepositoryMock) SoftDelete(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}
