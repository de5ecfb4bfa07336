package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type TicketRepositoryMock struct {
	mock.Mock
}

func NewTicketRepositoryMock() *TicketRepositoryMock {
	return &TicketRepositoryMock{}
}

func (m *TicketRepositoryMock) FindByID(ctx context.Context, id int64) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) ListByBookingRef(ctx context.Context, bookingRef uuid.UUID) ([]*model.Ticket, error) {
	args := m.Called(ctx, bookingRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, tx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int64) (*model.Ticket, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.TicketStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *TicketRepositoryMock) CountActiveByFlight(ctx context.Context, tx pgx.Tx, flightID int64) (int, error) {
	args := m.Called(ctx, tx, flightID)
	return args.Int(0), args.Error(1)
}
