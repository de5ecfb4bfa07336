package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReservationServiceMock struct {
	mock.Mock
}

func NewReservationServiceMock() *ReservationServiceMock {
	return &ReservationServiceMock{}
}

func (m *ReservationServiceMock) ReserveSeats(ctx context.Context, req model.ReserveSeatsRequest) (*model.ReservationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationResult), args.Error(1)
}

type CancellationServiceMock struct {
	mock.Mock
}

func NewCancellationServiceMock() *CancellationServiceMock {
	return &CancellationServiceMock{}
}

func (m *CancellationServiceMock) CancelTicket(ctx context.Context, req model.CancelTicketRequest) (*model.CancellationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CancellationResult), args.Error(1)
}

type TicketServiceMock struct {
	mock.Mock
}

func NewTicketServiceMock() *TicketServiceMock {
	return &TicketServiceMock{}
}

func (m *TicketServiceMock) GetTicket(ctx context.Context, id int64, passengerID *int64) (*model.Ticket, error) {
	args := m.Called(ctx, id, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) ListByBookingRef(ctx context.Context, bookingRef uuid.UUID, passengerID *int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, bookingRef, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}
