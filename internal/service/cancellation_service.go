package service

import (
	"context"
	"time"

	"flight-reservation/internal/database"
	"flight-reservation/internal/model"
	"flight-reservation/internal/queue"
	"flight-reservation/internal/repository"
	apperrors "flight-reservation/pkg/app_errors"
	"flight-reservation/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	warnFlightFullyAvailable = "flight already reports every seat available; seat release skipped"
	warnSeatNotBooked        = "seat was not marked booked; nothing to release"
	warnSeatMissing          = "ticket no longer references a seat; nothing to release"
)

type CancellationService interface {
	// CancelTicket 重複取消回傳 already_cancelled，不視為錯誤
	CancelTicket(ctx context.Context, req model.CancelTicketRequest) (*model.CancellationResult, error)
}

type CancellationServiceImpl struct {
	db               database.TxBeginner
	flightRepository repository.FlightRepository
	seatRepository   repository.SeatRepository
	ticketRepository repository.TicketRepository
	eventQueue       queue.TicketEventQueue
	log              *zap.Logger
	now              func() time.Time
}

func NewCancellationService(
	db database.TxBeginner,
	flightRepository repository.FlightRepository,
	seatRepository repository.SeatRepository,
	ticketRepository repository.TicketRepository,
	eventQueue queue.TicketEventQueue,
) CancellationService {
	return &CancellationServiceImpl{
		db:               db,
		flightRepository: flightRepository,
		seatRepository:   seatRepository,
		ticketRepository: ticketRepository,
		eventQueue:       eventQueue,
		log:              logger.WithComponent("service"),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func alreadyCancelled(ticketID int64) *model.CancellationResult {
	return &model.CancellationResult{
		TicketID: ticketID,
		Status:   model.CancellationStatusAlreadyCancelled,
	}
}

func (s *CancellationServiceImpl) CancelTicket(ctx context.Context, req model.CancelTicketRequest) (*model.CancellationResult, error) {
	ticket, err := s.ticketRepository.FindByID(ctx, req.TicketID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	// 不揭露他人機票是否存在
	if req.PassengerID != nil && ticket.PassengerID != *req.PassengerID {
		return nil, apperrors.ErrTicketNotFound
	}
	if !ticket.IsActive() {
		return alreadyCancelled(ticket.ID), nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer tx.Rollback(ctx)

	// 與訂位相同的上鎖順序：航班 -> 機票
	flight, err := s.flightRepository.FindByIDWithLock(ctx, tx, ticket.FlightID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	locked, err := s.ticketRepository.FindByIDWithLock(ctx, tx, ticket.ID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if !locked.IsActive() {
		return alreadyCancelled(locked.ID), nil
	}

	if err := s.ticketRepository.UpdateStatus(ctx, tx, locked.ID, model.TicketStatusCancelled); err != nil {
		return nil, apperrors.Transient(err)
	}

	result := &model.CancellationResult{
		TicketID: locked.ID,
		Status:   model.CancellationStatusCancelled,
	}

	switch {
	case flight.AvailableSeats >= flight.Capacity:
		result.Warning = warnFlightFullyAvailable
	case locked.SeatID == nil:
		result.Warning = warnSeatMissing
	default:
		released, err := s.seatRepository.MarkAvailable(ctx, tx, *locked.SeatID)
		if err != nil {
			return nil, apperrors.Transient(err)
		}
		result.SeatReleased = released
		if !released {
			result.Warning = warnSeatNotBooked
		}
	}

	available, err := s.flightRepository.RecountAvailableSeats(ctx, tx, flight.ID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	result.AvailableSeats = &available

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("failed to commit cancellation", zap.Int64("ticket_id", locked.ID), zap.Error(err))
		return nil, apperrors.Transient(err)
	}

	fields := []zap.Field{
		zap.Int64("ticket_id", locked.ID),
		zap.Int64("flight_id", flight.ID),
		zap.Bool("seat_released", result.SeatReleased),
		zap.Int("available_seats", available),
	}
	if req.CancelledBy != nil {
		fields = append(fields, zap.Int64("cancelled_by", *req.CancelledBy))
	}
	if result.Warning != "" {
		s.log.Warn("ticket cancelled without seat release", append(fields, zap.String("warning", result.Warning))...)
	} else {
		s.log.Info("ticket cancelled", fields...)
	}

	publishEvent(ctx, s.eventQueue, s.log, &model.TicketEvent{
		Type:           model.TicketEventCancelled,
		BookingRef:     locked.BookingRef,
		FlightID:       flight.ID,
		PassengerID:    locked.PassengerID,
		TicketIDs:      []int64{locked.ID},
		SeatNumbers:    []string{locked.SeatNumber},
		TotalPrice:     locked.Price,
		AvailableSeats: available,
		OccurredAt:     s.now(),
	})

	return result, nil
}
