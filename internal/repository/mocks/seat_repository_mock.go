package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type SeatRepositoryMock struct {
	mock.Mock
}

func NewSeatRepositoryMock() *SeatRepositoryMock {
	return &SeatRepositoryMock{}
}

func (m *SeatRepositoryMock) ListByFlight(ctx context.Context, flightID int64) ([]*model.Seat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Seat), args.Error(1)
}

func (m *SeatRepositoryMock) CountAvailable(ctx context.Context, flightID int64) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *SeatRepositoryMock) CreateBatch(ctx context.Context, tx pgx.Tx, seats []*model.Seat) (int64, error) {
	args := m.Called(ctx, tx, seats)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SeatRepositoryMock) FindForFlightWithLock(ctx context.Context, tx pgx.Tx, flightID int64, seatIDs []int64) ([]*model.BookableSeat, error) {
	args := m.Called(ctx, tx, flightID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BookableSeat), args.Error(1)
}

func (m *SeatRepositoryMock) MarkBooked(ctx context.Context, tx pgx.Tx, seatID int64, ticketID int64) error {
	args := m.Called(ctx, tx, seatID, ticketID)
	return args.Error(0)
}

func (m *SeatRepositoryMock) MarkAvailable(ctx context.Context, tx pgx.Tx, seatID int64) (bool, error) {
	args := m.Called(ctx, tx, seatID)
	return args.Bool(0), args.Error(1)
}
