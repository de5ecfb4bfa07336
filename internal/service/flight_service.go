package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flight-reservation/internal/cache"
	"flight-reservation/internal/database"
	"flight-reservation/internal/model"
	"flight-reservation/internal/repository"
	"flight-reservation/internal/seatmap"
	apperrors "flight-reservation/pkg/app_errors"
	"flight-reservation/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type FlightService interface {
	GetFlight(ctx context.Context, id int64) (*model.Flight, error)
	SearchFlights(ctx context.Context, params model.FlightSearchParams) ([]*model.Flight, error)
	// GetAvailability 優先讀 Redis，未命中時回源 Postgres 並回填
	GetAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error)
	// RefreshAvailability 以 Postgres 的資料覆寫快取
	RefreshAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error)

	CreateFlight(ctx context.Context, req model.CreateFlightRequest) (*model.Flight, error)
	UpdateFlight(ctx context.Context, id int64, params model.UpdateFlightParams) (*model.Flight, error)
	DeleteFlight(ctx context.Context, id int64) error
	RecountAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error)
}

type FlightServiceImpl struct {
	db                database.TxBeginner
	flightRepository  repository.FlightRepository
	seatRepository    repository.SeatRepository
	ticketRepository  repository.TicketRepository
	availabilityCache cache.FlightAvailabilityCache
	catalog           seatmap.Catalog
	log               *zap.Logger
}

func NewFlightService(
	db database.TxBeginner,
	flightRepository repository.FlightRepository,
	seatRepository repository.SeatRepository,
	ticketRepository repository.TicketRepository,
	availabilityCache cache.FlightAvailabilityCache,
	catalog seatmap.Catalog,
) FlightService {
	return &FlightServiceImpl{
		db:                db,
		flightRepository:  flightRepository,
		seatRepository:    seatRepository,
		ticketRepository:  ticketRepository,
		availabilityCache: availabilityCache,
		catalog:           catalog,
		log:               logger.WithComponent("service"),
	}
}

func availabilityOf(flight *model.Flight) *model.FlightAvailability {
	return &model.FlightAvailability{
		FlightID:       flight.ID,
		Capacity:       flight.Capacity,
		AvailableSeats: flight.AvailableSeats,
		Version:        flight.UpdatedAt.UnixNano(),
	}
}

func (s *FlightServiceImpl) GetFlight(ctx context.Context, id int64) (*model.Flight, error) {
	flight, err := s.flightRepository.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	sections, err := s.flightRepository.FindSections(ctx, id)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	flight.Sections = sections

	return flight, nil
}

func (s *FlightServiceImpl) SearchFlights(ctx context.Context, params model.FlightSearchParams) ([]*model.Flight, error) {
	params.Origin = strings.TrimSpace(params.Origin)
	params.Destination = strings.TrimSpace(params.Destination)
	if params.Passengers < 0 {
		return nil, fmt.Errorf("%w: passengers must not be negative", apperrors.ErrInvalidInput)
	}

	flights, err := s.flightRepository.Search(ctx, params)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	return flights, nil
}

func (s *FlightServiceImpl) GetAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error) {
	cached, err := s.availabilityCache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrCacheMiss) {
		// 快取只是加速，失敗時直接回源
		s.log.Warn("availability cache read failed", zap.Int64("flight_id", id), zap.Error(err))
	}
	return s.RefreshAvailability(ctx, id)
}

func (s *FlightServiceImpl) RefreshAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error) {
	flight, err := s.flightRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrFlightNotFound) {
			s.invalidate(ctx, id)
		}
		return nil, apperrors.Transient(err)
	}

	availability := availabilityOf(flight)
	if _, err := s.availabilityCache.Set(ctx, availability); err != nil {
		s.log.Warn("availability cache write failed", zap.Int64("flight_id", id), zap.Error(err))
	}
	return availability, nil
}

func (s *FlightServiceImpl) invalidate(ctx context.Context, id int64) {
	if err := s.availabilityCache.Invalidate(ctx, id); err != nil {
		s.log.Warn("availability cache invalidate failed", zap.Int64("flight_id", id), zap.Error(err))
	}
}

func (s *FlightServiceImpl) CreateFlight(ctx context.Context, req model.CreateFlightRequest) (*model.Flight, error) {
	flight := &model.Flight{
		FlightNumber:   strings.TrimSpace(req.FlightNumber),
		Origin:         strings.TrimSpace(req.Origin),
		Destination:    strings.TrimSpace(req.Destination),
		DepartureTime:  req.DepartureTime.UTC(),
		ArrivalTime:    req.ArrivalTime.UTC(),
		Capacity:       req.Capacity,
		BaseFare:       req.BaseFare,
		AvailableSeats: req.Capacity,
	}
	if err := validateFlight(flight, req.BusinessFraction); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer tx.Rollback(ctx)

	created, err := s.flightRepository.Create(ctx, tx, flight)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	sections, err := s.generateInventory(ctx, tx, created.ID, created.Capacity, req.BusinessFraction)
	if err != nil {
		return nil, err
	}

	available, err := s.flightRepository.RecountAvailableSeats(ctx, tx, created.ID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Transient(err)
	}

	created.AvailableSeats = available
	created.Sections = sections

	s.log.Info("flight created",
		zap.Int64("flight_id", created.ID),
		zap.String("flight_number", created.FlightNumber),
		zap.Int("capacity", created.Capacity),
		zap.Int("sections", len(sections)),
	)
	return created, nil
}

// generateInventory 依艙等切分建立 sections 與座位
func (s *FlightServiceImpl) generateInventory(ctx context.Context, tx pgx.Tx, flightID int64, capacity int, fraction *float64) ([]*model.Section, error) {
	sections := s.catalog.Split(capacity, fraction)
	if err := s.flightRepository.CreateSections(ctx, tx, flightID, sections); err != nil {
		return nil, apperrors.Transient(err)
	}

	seats := make([]*model.Seat, 0, capacity)
	for _, sectionSeats := range seatmap.GenerateFlightSeats(sections) {
		seats = append(seats, sectionSeats...)
	}

	n, err := s.seatRepository.CreateBatch(ctx, tx, seats)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if int(n) != capacity {
		return nil, apperrors.Transient(fmt.Errorf("generated %d seats for capacity %d", n, capacity))
	}

	return sections, nil
}

func (s *FlightServiceImpl) UpdateFlight(ctx context.Context, id int64, params model.UpdateFlightParams) (*model.Flight, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer tx.Rollback(ctx)

	flight, err := s.flightRepository.FindByIDWithLock(ctx, tx, id)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	applyFlightParams(flight, params)
	if err := validateFlight(flight, params.BusinessFraction); err != nil {
		return nil, err
	}

	var sections []*model.Section
	if params.RegeneratesSeats() {
		// 有效機票綁定座位時不可重建
		active, err := s.ticketRepository.CountActiveByFlight(ctx, tx, id)
		if err != nil {
			return nil, apperrors.Transient(err)
		}
		if active > 0 {
			return nil, fmt.Errorf("%w: %d active tickets", apperrors.ErrFlightHasActiveTickets, active)
		}

		if err := s.flightRepository.DeleteSections(ctx, tx, id); err != nil {
			return nil, apperrors.Transient(err)
		}
		if sections, err = s.generateInventory(ctx, tx, id, flight.Capacity, params.BusinessFraction); err != nil {
			return nil, err
		}
	}

	updated, err := s.flightRepository.Update(ctx, tx, flight)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Transient(err)
	}

	if sections == nil {
		if sections, err = s.flightRepository.FindSections(ctx, id); err != nil {
			return nil, apperrors.Transient(err)
		}
	}
	updated.Sections = sections

	s.invalidate(ctx, id)
	s.log.Info("flight updated",
		zap.Int64("flight_id", id),
		zap.Bool("seats_regenerated", params.RegeneratesSeats()),
	)
	return updated, nil
}

func (s *FlightServiceImpl) DeleteFlight(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperrors.Transient(err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.flightRepository.FindByIDWithLock(ctx, tx, id); err != nil {
		return apperrors.Transient(err)
	}

	active, err := s.ticketRepository.CountActiveByFlight(ctx, tx, id)
	if err != nil {
		return apperrors.Transient(err)
	}
	if active > 0 {
		return fmt.Errorf("%w: %d active tickets", apperrors.ErrFlightHasActiveTickets, active)
	}

	if err := s.flightRepository.SoftDelete(ctx, tx, id); err != nil {
		return apperrors.Transient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Transient(err)
	}

	s.invalidate(ctx, id)
	s.log.Info("flight deleted", zap.Int64("flight_id", id))
	return nil
}

func (s *FlightServiceImpl) RecountAvailability(ctx context.Context, id int64) (*model.FlightAvailability, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer tx.Rollback(ctx)

	flight, err := s.flightRepository.FindByIDWithLock(ctx, tx, id)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	available, err := s.flightRepository.RecountAvailableSeats(ctx, tx, id)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Transient(err)
	}

	if available != flight.AvailableSeats {
		s.log.Warn("available seat counter corrected",
			zap.Int64("flight_id", id),
			zap.Int("before", flight.AvailableSeats),
			zap.Int("after", available),
		)
	}

	return s.RefreshAvailability(ctx, id)
}

func applyFlightParams(flight *model.Flight, p model.UpdateFlightParams) {
	if p.FlightNumber != nil {
		flight.FlightNumber = strings.TrimSpace(*p.FlightNumber)
	}
	if p.Origin != nil {
		flight.Origin = strings.TrimSpace(*p.Origin)
	}
	if p.Destination != nil {
		flight.Destination = strings.TrimSpace(*p.Destination)
	}
	if p.DepartureTime != nil {
		flight.DepartureTime = p.DepartureTime.UTC()
	}
	if p.ArrivalTime != nil {
		flight.ArrivalTime = p.ArrivalTime.UTC()
	}
	if p.BaseFare != nil {
		flight.BaseFare = *p.BaseFare
	}
	if p.Capacity != nil {
		flight.Capacity = *p.Capacity
	}
}

func validateFlight(f *model.Flight, fraction *float64) error {
	switch {
	case f.FlightNumber == "" || f.Origin == "" || f.Destination == "":
		return fmt.Errorf("%w: flight number, origin and destination are required", apperrors.ErrInvalidInput)
	case strings.EqualFold(f.Origin, f.Destination):
		return fmt.Errorf("%w: origin and destination must differ", apperrors.ErrInvalidInput)
	case !f.ArrivalTime.After(f.DepartureTime):
		return fmt.Errorf("%w: arrival must be after departure", apperrors.ErrInvalidInput)
	case f.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", apperrors.ErrInvalidInput)
	case f.BaseFare < 0:
		return fmt.Errorf("%w: base fare must not be negative", apperrors.ErrInvalidInput)
	case fraction != nil && (*fraction < 0 || *fraction >= 1):
		return fmt.Errorf("%w: business fraction must be in [0, 1)", apperrors.ErrInvalidInput)
	}
	return nil
}
