package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flight-reservation/config"
	cachemocks "flight-reservation/internal/cache/mocks"
	"flight-reservation/internal/model"
	repomocks "flight-reservation/internal/repository/mocks"
	"flight-reservation/internal/seatmap"
	"flight-reservation/internal/service"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type flightFixture struct {
	db      *fakeDB
	flights *repomocks.FlightRepositoryMock
	seats   *repomocks.SeatRepositoryMock
	tickets *repomocks.TicketRepositoryMock
	cache   *cachemocks.FlightAvailabilityCacheMock
	svc     service.FlightService
}

func newFlightFixture() *flightFixture {
	f := &flightFixture{
		db:      newFakeDB(),
		flights: repomocks.NewFlightRepositoryMock(),
		seats:   repomocks.NewSeatRepositoryMock(),
		tickets: repomocks.NewTicketRepositoryMock(),
		cache:   cachemocks.NewFlightAvailabilityCacheMock(),
	}
	catalog := seatmap.NewCatalog(config.BookingConfig{
		BusinessFraction:   0.2,
		BusinessName:       "Business",
		BusinessMultiplier: 1.8,
		EconomyName:        "Economy",
		EconomyMultiplier:  1.0,
	})
	f.svc = service.NewFlightService(f.db, f.flights, f.seats, f.tickets, f.cache, catalog)
	return f
}

func createRequest() model.CreateFlightRequest {
	dep := time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
	return model.CreateFlightRequest{
		FlightNumber:  "BR100",
		Origin:        "TPE",
		Destination:   "NRT",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(3 * time.Hour),
		Capacity:      10,
		BaseFare:      100,
	}
}

func TestCreateFlight_GeneratesInventory(t *testing.T) {
	ctx := context.Background()
	f := newFlightFixture()
	tx := f.db.tx

	f.flights.On("Create", ctx, tx, mock.MatchedBy(func(fl *model.Flight) bool {
		return fl.FlightNumber == "BR100" && fl.AvailableSeats == 10
	})).Return(&model.Flight{ID: 1, FlightNumber: "BR100", Capacity: 10, BaseFare: 100}, nil)
	f.flights.On("CreateSections", ctx, tx, int64(1), mock.Anything).
		Run(func(args mock.Arguments) {
			for i, s := range args.Get(3).([]*model.Section) {
				s.ID = int64(100 + i)
			}
		}).Return(nil)
	f.seats.On("CreateBatch", ctx, tx, mock.MatchedBy(func(seats []*model.Seat) bool {
		if len(seats) != 10 {
			return false
		}
		// 商務艙 2 席 (1A,1C)，經濟艙 8 席從第 2 排開始
		return seats[0].SectionID == 100 && seats[0].Number() == "1A" &&
			seats[1].Number() == "1C" &&
			seats[2].SectionID == 101 && seats[2].Number() == "2A" &&
			seats[9].Number() == "3B"
	})).Return(int64(10), nil)
	f.flights.On("RecountAvailableSeats", ctx, tx, int64(1)).Return(10, nil)

	flight, err := f.svc.CreateFlight(ctx, createRequest())

	require.NoError(t, err)
	assert.Equal(t, 10, flight.AvailableSeats)
	require.Len(t, flight.Sections, 2)
	assert.Equal(t, 2, flight.Sections[0].Capacity)
	assert.Equal(t, 8, flight.Sections[1].Capacity)
	assert.True(t, tx.committed)
	f.flights.AssertExpectations(t)
	f.seats.AssertExpectations(t)
}

func TestCreateFlight_Validation(t *testing.T) {
	f := newFlightFixture()

	tests := []struct {
		name   string
		modify func(r *model.CreateFlightRequest)
	}{
		{"missing number", func(r *model.CreateFlightRequest) { r.FlightNumber = "" }},
		{"same airports", func(r *model.CreateFlightRequest) { r.Destination = "tpe" }},
		{"arrival before departure", func(r *model.CreateFlightRequest) { r.ArrivalTime = r.DepartureTime }},
		{"zero capacity", func(r *model.CreateFlightRequest) { r.Capacity = 0 }},
		{"negative fare", func(r *model.CreateFlightRequest) { r.BaseFare = -1 }},
		{"fraction out of range", func(r *model.CreateFlightRequest) { r.BusinessFraction = float64Ptr(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest()
			tt.modify(&req)
			_, err := f.svc.CreateFlight(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, f.db.begun)
}

func existingFlight() *model.Flight {
	dep := time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
	return &model.Flight{
		ID: 1, FlightNumber: "BR100", Origin: "TPE", Destination: "NRT",
		DepartureTime: dep, ArrivalTime: dep.Add(3 * time.Hour),
		Capacity: 10, BaseFare: 100, AvailableSeats: 8,
	}
}

func TestUpdateFlight_MetadataOnly(t *testing.T) {
	ctx := context.Background()
	f := newFlightFixture()
	tx := f.db.tx
	fare := 150.0

	f.flights.On("FindByIDWithLock", ctx, tx, int64(1)).Return(existingFlight(), nil)
	f.flights.On("Update", ctx, tx, mock.MatchedBy(func(fl *model.Flight) bool {
		return fl.BaseFare == 150 && fl.Capacity == 10
	})).Return(&model.Flight{ID: 1, BaseFare: 150, Capacity: 10, AvailableSeats: 8}, nil)
	f.flights.On("FindSections", ctx, int64(1)).Return([]*model.Section{{ID: 100}}, nil)
	f.cache.On("Invalidate", ctx, int64(1)).Return(nil)

	updated, err := f.svc.UpdateFlight(ctx, 1, model.UpdateFlightParams{BaseFare: &fare})

	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.BaseFare)
	assert.Len(t, updated.Sections, 1)
	assert.True(t, tx.committed)
	f.flights.AssertNotCalled(t, "DeleteSections", mock.Anything, mock.Anything, mock.Anything)
	f.tickets.AssertNotCalled(t, "CountActiveByFlight", mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertExpectations(t)
}

func TestUpdateFlight_CapacityChangeWithActiveTickets(t *testing.T) {
	ctx := context.Background()
	f := newFlightFixture()
	tx := f.db.tx
	capacity := 20

	f.flights.On("FindByIDWithLock", ctx, tx, int64(1)).Return(existingFlight(), nil)
	f.tickets.On("CountActiveByFlight", ctx, tx, int64(1)).Return(2, nil)

	_, err := f.svc.UpdateFlight(ctx, 1, model.UpdateFlightParams{Capacity: &capacity})

	assert.ErrorIs(t, err, apperrors.ErrFlightHasActiveTickets)
	assert.True(t, apperrors.IsConflict(err))
	assert.True(t, tx.rolledBack)
	f.flights.AssertNotCalled(t, "DeleteSections", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateFlight_CapacityChangeRegeneratesSeats(t *testing.T) {
	ctx := context.Background()
	f := newFlightFixture()
	tx := f.db.tx
	capacity := 6

	f.flights.On("FindByIDWithLock", ctx, tx, int64(1)).Return(existingFlight(), nil)
	f.tickets.On("CountActiveByFlight", ctx, tx, int64(1)).Return(0, nil)
	f.flights.On("DeleteSections", ctx, tx, int64(1)).Return(nil)
	f.flights.On("CreateSections", ctx, tx, int64(1), mock.Anything).Return(nil)
	f.seats.On("CreateBatch", ctx, tx, mock.MatchedBy(func(seats []*model.Seat) bool {
		return len(seats) == 6
	})).Return(int64(6), nil)
	f.flights.On("Update", ctx, tx, mock.MatchedBy(func(fl *model.Flight) bool {
		return fl.Capacity == 6
	})).Return(&model.Flight{ID: 1, Capacity: 6, AvailableSeats: 6}, nil)
	f.cache.On("Invalidate", ctx, int64(1)).Return(nil)

	updated, err := f.svc.UpdateFlight(ctx, 1, model.UpdateFlightParams{Capacity: &capacity})

	require.NoError(t, err)
	assert.Equal(t, 6, updated.AvailableSeats)
	require.Len(t, updated.Sections, 2)
	assert.Equal(t, 1, updated.Sections[0].Capacity)
	assert.True(t, tx.committed)
	f.flights.AssertNotCalled(t, "FindSections", mock.Anything, mock.Anything)
}

func TestDeleteFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("active tickets", func(t *testing.T) {
		f := newFlightFixture()
		f.flights.On("FindByIDWithLock", ctx, f.db.tx, int64(1)).Return(existingFlight(), nil)
		f.tickets.On("CountActiveByFlight", ctx, f.db.tx, int64(1)).Return(1, nil)

		err := f.svc.DeleteFlight(ctx, 1)

		assert.ErrorIs(t, err, apperrors.ErrFlightHasActiveTickets)
		f.flights.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newFlightFixture()
		f.flights.On("FindByIDWithLock", ctx, f.db.tx, int64(1)).Return(existingFlight(), nil)
		f.tickets.On("CountActiveByFlight", ctx, f.db.tx, int64(1)).Return(0, nil)
		f.flights.On("SoftDelete", ctx, f.db.tx, int64(1)).Return(nil)
		f.cache.On("Invalidate", ctx, int64(1)).Return(nil)

		require.NoError(t, f.svc.DeleteFlight(ctx, 1))
		assert.True(t, f.db.tx.committed)
		f.cache.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFlightFixture()
		f.flights.On("FindByIDWithLock", ctx, f.db.tx, int64(1)).Return(nil, apperrors.ErrFlightNotFound)

		assert.ErrorIs(t, f.svc.DeleteFlight(ctx, 1), apperrors.ErrFlightNotFound)
	})
}

func TestGetAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		f := newFlightFixture()
		cached := &model.FlightAvailability{FlightID: 1, Capacity: 10, AvailableSeats: 3, Version: 9}
		f.cache.On("Get", ctx, int64(1)).Return(cached, nil)

		got, err := f.svc.GetAvailability(ctx, 1)

		require.NoError(t, err)
		assert.Same(t, cached, got)
		f.flights.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss reads through", func(t *testing.T) {
		f := newFlightFixture()
		flight := existingFlight()
		flight.UpdatedAt = time.Unix(100, 0)
		f.cache.On("Get", ctx, int64(1)).Return(nil, apperrors.ErrCacheMiss)
		f.flights.On("FindByID", ctx, int64(1)).Return(flight, nil)
		f.cache.On("Set", ctx, mock.MatchedBy(func(a *model.FlightAvailability) bool {
			return a.AvailableSeats == 8 && a.Version == flight.UpdatedAt.UnixNano()
		})).Return(true, nil)

		got, err := f.svc.GetAvailability(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 8, got.AvailableSeats)
		f.cache.AssertExpectations(t)
	})

	t.Run("cache error falls back", func(t *testing.T) {
		f := newFlightFixture()
		f.cache.On("Get", ctx, int64(1)).Return(nil, errors.New("redis down"))
		f.flights.On("FindByID", ctx, int64(1)).Return(existingFlight(), nil)
		f.cache.On("Set", ctx, mock.Anything).Return(false, errors.New("redis down"))

		got, err := f.svc.GetAvailability(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 8, got.AvailableSeats)
	})

	t.Run("deleted flight invalidates", func(t *testing.T) {
		f := newFlightFixture()
		f.cache.On("Get", ctx, int64(1)).Return(nil, apperrors.ErrCacheMiss)
		f.flights.On("FindByID", ctx, int64(1)).Return(nil, apperrors.ErrFlightNotFound)
		f.cache.On("Invalidate", ctx, int64(1)).Return(nil)

		_, err := f.svc.GetAvailability(ctx, 1)

		assert.ErrorIs(t, err, apperrors.ErrFlightNotFound)
		f.cache.AssertExpectations(t)
	})
}

func TestRecountAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFlightFixture()
	tx := f.db.tx
	drifted := existingFlight()
	drifted.AvailableSeats = 9

	f.flights.On("FindByIDWithLock", ctx, tx, int64(1)).Return(drifted, nil)
	f.flights.On("RecountAvailableSeats", ctx, tx, int64(1)).Return(8, nil)
	f.flights.On("FindByID", ctx, int64(1)).Return(existingFlight(), nil)
	f.cache.On("Set", ctx, mock.Anything).Return(true, nil)

	got, err := f.svc.RecountAvailability(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 8, got.AvailableSeats)
	assert.True(t, tx.committed)
}

func TestSearchFlights(t *testing.T) {
	ctx := context.Background()
	f := newFlightFixture()
	f.flights.On("Search", ctx, model.FlightSearchParams{Origin: "TPE", Destination: "NRT", Passengers: 2}).
		Return([]*model.Flight{existingFlight()}, nil)

	flights, err := f.svc.SearchFlights(ctx, model.FlightSearchParams{Origin: " TPE ", Destination: "NRT", Passengers: 2})

	require.NoError(t, err)
	assert.Len(t, flights, 1)

	_, err = f.svc.SearchFlights(ctx, model.FlightSearchParams{Passengers: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
