package service

import (
	"context"
	"fmt"

	"flight-reservation/internal/model"
	"flight-reservation/internal/repository"
	"flight-reservation/internal/seatmap"
	apperrors "flight-reservation/pkg/app_errors"
)

type LayoutService interface {
	// BuildSeatLayout 座位圖；可用座位少於乘客數時回傳 CapacityError
	BuildSeatLayout(ctx context.Context, flightID int64, passengers int) (*model.LayoutResult, error)
	// CurrentLayout 不檢查乘客數，訂位失敗後重新顯示用
	CurrentLayout(ctx context.Context, flightID int64) (*model.LayoutResult, error)
}

type LayoutServiceImpl struct {
	flightRepository repository.FlightRepository
	seatRepository   repository.SeatRepository
	maxPassengers    int
}

func NewLayoutService(
	flightRepository repository.FlightRepository,
	seatRepository repository.SeatRepository,
	maxPassengers int,
) LayoutService {
	return &LayoutServiceImpl{
		flightRepository: flightRepository,
		seatRepository:   seatRepository,
		maxPassengers:    maxPassengers,
	}
}

func (s *LayoutServiceImpl) BuildSeatLayout(ctx context.Context, flightID int64, passengers int) (*model.LayoutResult, error) {
	if passengers < 1 || passengers > s.maxPassengers {
		return nil, fmt.Errorf("%w: passengers must be between 1 and %d", apperrors.ErrInvalidInput, s.maxPassengers)
	}

	layout, err := s.load(ctx, flightID, passengers)
	if err != nil {
		return nil, err
	}

	if layout.AvailableSeats < passengers {
		return nil, &apperrors.CapacityError{Requested: passengers, Available: layout.AvailableSeats}
	}

	return layout, nil
}

func (s *LayoutServiceImpl) CurrentLayout(ctx context.Context, flightID int64) (*model.LayoutResult, error) {
	return s.load(ctx, flightID, 0)
}

// load 唯讀投影，不修改座位狀態
func (s *LayoutServiceImpl) load(ctx context.Context, flightID int64, passengers int) (*model.LayoutResult, error) {
	flight, err := s.flightRepository.FindByID(ctx, flightID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	sections, err := s.flightRepository.FindSections(ctx, flightID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	seats, err := s.seatRepository.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	return seatmap.BuildLayout(flight, sections, seats, passengers), nil
}
