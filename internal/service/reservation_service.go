package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"flight-reservation/internal/database"
	"flight-reservation/internal/model"
	"flight-reservation/internal/queue"
	"flight-reservation/internal/repository"
	"flight-reservation/internal/seatmap"
	apperrors "flight-reservation/pkg/app_errors"
	"flight-reservation/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationService interface {
	// ReserveSeats 將購物車轉為機票，全部成功或全部不生效
	ReserveSeats(ctx context.Context, req model.ReserveSeatsRequest) (*model.ReservationResult, error)
}

type ReservationServiceImpl struct {
	db               database.TxBeginner
	flightRepository repository.FlightRepository
	seatRepository   repository.SeatRepository
	ticketRepository repository.TicketRepository
	eventQueue       queue.TicketEventQueue
	maxPassengers    int
	log              *zap.Logger
	now              func() time.Time
}

func NewReservationService(
	db database.TxBeginner,
	flightRepository repository.FlightRepository,
	seatRepository repository.SeatRepository,
	ticketRepository repository.TicketRepository,
	eventQueue queue.TicketEventQueue,
	maxPassengers int,
) ReservationService {
	return &ReservationServiceImpl{
		db:               db,
		flightRepository: flightRepository,
		seatRepository:   seatRepository,
		ticketRepository: ticketRepository,
		eventQueue:       eventQueue,
		maxPassengers:    maxPassengers,
		log:              logger.WithComponent("service"),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReservationServiceImpl) ReserveSeats(ctx context.Context, req model.ReserveSeatsRequest) (*model.ReservationResult, error) {
	if err := s.validateCart(req); err != nil {
		return nil, err
	}

	// 1. 同一座位不可重複選取
	seatIDs := req.SeatIDs()
	if dups := duplicateSeatIDs(seatIDs); len(dups) > 0 {
		return nil, apperrors.NewSeatError(apperrors.ErrDuplicateSeatSelection, dups...)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer tx.Rollback(ctx)

	// 先鎖航班列，之後的重新計數才能看到所有已提交的訂位
	flight, err := s.flightRepository.FindByIDWithLock(ctx, tx, req.FlightID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	seats, err := s.seatRepository.FindForFlightWithLock(ctx, tx, flight.ID, seatIDs)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	byID := make(map[int64]*model.BookableSeat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	// 2. 座位必須屬於該航班
	var missing []int64
	for _, id := range seatIDs {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSeatError(apperrors.ErrInvalidSeat, missing...)
	}

	// 3. 在交易內重新確認座位仍可訂
	var taken []int64
	for _, id := range seatIDs {
		if !byID[id].IsAvailable() {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return nil, apperrors.NewSeatError(apperrors.ErrSeatNoLongerAvailable, taken...)
	}

	bookingRef := uuid.New()
	orderedAt := s.now()
	tickets := make([]*model.Ticket, 0, len(req.Items))
	total := 0.0

	for _, item := range req.Items {
		seat := byID[item.SeatID]
		sectionID, seatID := seat.SectionID, seat.ID

		// 價格以提交當下的基本票價與艙等倍率計算
		ticket := &model.Ticket{
			BookingRef:     bookingRef,
			PassengerID:    req.PassengerID,
			PassengerName:  strings.TrimSpace(item.Passenger.FullName),
			PassportNumber: item.Passenger.PassportNumber,
			BookedBy:       req.BookedBy,
			FlightID:       flight.ID,
			SectionID:      &sectionID,
			SeatID:         &seatID,
			SeatNumber:     seat.Number(),
			SectionName:    seat.SectionName,
			Price:          seatmap.Price(flight.BaseFare, seat.PriceMultiplier),
			Status:         model.TicketStatusBooked,
			OrderedAt:      orderedAt,
		}

		created, err := s.ticketRepository.Create(ctx, tx, ticket)
		if err != nil {
			return nil, apperrors.Transient(err)
		}

		if err := s.seatRepository.MarkBooked(ctx, tx, seatID, created.ID); err != nil {
			return nil, apperrors.Transient(err)
		}

		tickets = append(tickets, created)
		total += created.Price
	}

	available, err := s.flightRepository.RecountAvailableSeats(ctx, tx, flight.ID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("failed to commit reservation", zap.Int64("flight_id", flight.ID), zap.Error(err))
		return nil, apperrors.Transient(err)
	}

	result := &model.ReservationResult{
		BookingRef:     bookingRef,
		TicketIDs:      make([]int64, 0, len(tickets)),
		Tickets:        tickets,
		TotalPrice:     round2(total),
		AvailableSeats: available,
	}
	seatNumbers := make([]string, 0, len(tickets))
	for _, t := range tickets {
		result.TicketIDs = append(result.TicketIDs, t.ID)
		seatNumbers = append(seatNumbers, t.SeatNumber)
	}
	result.PriceAdjusted = s.priceAdjusted(req, tickets, result.TotalPrice)

	s.log.Info("seats reserved",
		zap.String("booking_ref", bookingRef.String()),
		zap.Int64("flight_id", flight.ID),
		zap.Int64("passenger_id", req.PassengerID),
		zap.Int64s("ticket_ids", result.TicketIDs),
		zap.Float64("total_price", result.TotalPrice),
	)

	publishEvent(ctx, s.eventQueue, s.log, &model.TicketEvent{
		Type:           model.TicketEventBooked,
		BookingRef:     bookingRef,
		FlightID:       flight.ID,
		PassengerID:    req.PassengerID,
		TicketIDs:      result.TicketIDs,
		SeatNumbers:    seatNumbers,
		TotalPrice:     result.TotalPrice,
		AvailableSeats: available,
		OccurredAt:     orderedAt,
	})

	return result, nil
}

func (s *ReservationServiceImpl) validateCart(req model.ReserveSeatsRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one passenger is required", apperrors.ErrInvalidInput)
	}
	if len(req.Items) > s.maxPassengers {
		return fmt.Errorf("%w: at most %d passengers per booking", apperrors.ErrInvalidInput, s.maxPassengers)
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Passenger.FullName) == "" {
			return fmt.Errorf("%w: passenger %d is missing a name", apperrors.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// priceAdjusted 前端帶回的價格只用於比對；不一致時記錄並以伺服器價格為準
func (s *ReservationServiceImpl) priceAdjusted(req model.ReserveSeatsRequest, tickets []*model.Ticket, total float64) bool {
	adjusted := false
	for i, item := range req.Items {
		if item.Price != nil && math.Abs(*item.Price-tickets[i].Price) > priceTolerance {
			adjusted = true
		}
	}
	if req.ExpectedTotal != nil && math.Abs(*req.ExpectedTotal-total) > priceTolerance {
		adjusted = true
	}
	if adjusted {
		fields := []zap.Field{
			zap.Int64("flight_id", req.FlightID),
			zap.Int64("passenger_id", req.PassengerID),
			zap.Float64("server_total", total),
		}
		if req.ExpectedTotal != nil {
			fields = append(fields, zap.Float64("client_total", *req.ExpectedTotal))
		}
		s.log.Warn("client price differs from server price", fields...)
	}
	return adjusted
}

// duplicateSeatIDs 回傳重複出現的座位 id，依首次重複的順序
func duplicateSeatIDs(ids []int64) []int64 {
	seen := make(map[int64]int, len(ids))
	var dups []int64
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
