package service

import (
	"context"

	"flight-reservation/internal/model"
	"flight-reservation/internal/repository"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/google/uuid"
)

// TicketService 機票查詢；passengerID 不為 nil 時只回傳該乘客的機票
type TicketService interface {
	GetTicket(ctx context.Context, id int64, passengerID *int64) (*model.Ticket, error)
	ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Ticket, error)
	ListByBookingRef(ctx context.Context, bookingRef uuid.UUID, passengerID *int64) ([]*model.Ticket, error)
}

type TicketServiceImpl struct {
	repo repository.TicketRepository
}

func NewTicketService(repo repository.TicketRepository) TicketService {
	return &TicketServiceImpl{repo: repo}
}

func (s *TicketServiceImpl) GetTicket(ctx context.Context, id int64, passengerID *int64) (*model.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if passengerID != nil && ticket.PassengerID != *passengerID {
		return nil, apperrors.ErrTicketNotFound
	}
	return ticket, nil
}

func (s *TicketServiceImpl) ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Ticket, error) {
	tickets, err := s.repo.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	return tickets, nil
}

func (s *TicketServiceImpl) ListByBookingRef(ctx context.Context, bookingRef uuid.UUID, passengerID *int64) ([]*model.Ticket, error) {
	tickets, err := s.repo.ListByBookingRef(ctx, bookingRef)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if passengerID == nil {
		return tickets, nil
	}

	owned := make([]*model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.PassengerID == *passengerID {
			owned = append(owned, t)
		}
	}
	return owned, nil
}
