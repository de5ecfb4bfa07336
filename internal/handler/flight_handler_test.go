package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flight-reservation/internal/handler"
	"flight-reservation/internal/middleware"
	"flight-reservation/internal/model"
	"flight-reservation/internal/service/mocks"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupFlightTestRouter(flights *mocks.FlightServiceMock, layouts *mocks.LayoutServiceMock) *gin.Engine {
	router, api, admin := newTestRouter(&middleware.Identity{PassengerID: 1, Roles: []string{middleware.RoleEmployee}})
	handler.NewFlightHandler(flights, layouts).RegisterRoutes(api, admin)
	return router
}

func TestSearchFlights(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())

		date := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
		flights.On("SearchFlights", mock.Anything, model.FlightSearchParams{
			Origin: "TPE", Destination: "NRT", Date: &date, Passengers: 2,
		}).Return([]*model.Flight{{ID: 1, FlightNumber: "BR100"}}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights?origin=TPE&destination=NRT&date=2026-11-01&passengers=2", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []model.Flight
		require.NoError(t, decode(w.Body, &got))
		assert.Len(t, got, 1)
		flights.AssertExpectations(t)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())

		req := httptest.NewRequest("GET", "/api/v1/flights?date=11-01-2026", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		flights.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
	})
}

func TestGetFlight(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())
		flights.On("GetFlight", mock.Anything, int64(9)).Return(nil, apperrors.ErrFlightNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights/9", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())

		req := httptest.NewRequest("GET", "/api/v1/flights/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		flights.AssertNotCalled(t, "GetFlight", mock.Anything, mock.Anything)
	})

	t.Run("TransientFailure", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())
		flights.On("GetFlight", mock.Anything, int64(1)).
			Return(nil, apperrors.Transient(errors.New("conn refused"))).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"error":"Service temporarily unavailable","retryable":true}`, w.Body.String())
	})
}

func TestSeatLayout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		layouts := mocks.NewLayoutServiceMock()
		router := setupFlightTestRouter(mocks.NewFlightServiceMock(), layouts)
		layouts.On("BuildSeatLayout", mock.Anything, int64(1), 3).
			Return(&model.LayoutResult{FlightID: 1, Passengers: 3, AvailableSeats: 5}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights/1/seats?passengers=3", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		layouts.AssertExpectations(t)
	})

	t.Run("DefaultsToOnePassenger", func(t *testing.T) {
		layouts := mocks.NewLayoutServiceMock()
		router := setupFlightTestRouter(mocks.NewFlightServiceMock(), layouts)
		layouts.On("BuildSeatLayout", mock.Anything, int64(1), 1).
			Return(&model.LayoutResult{FlightID: 1, Passengers: 1}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights/1/seats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("InsufficientCapacity", func(t *testing.T) {
		layouts := mocks.NewLayoutServiceMock()
		router := setupFlightTestRouter(mocks.NewFlightServiceMock(), layouts)
		layouts.On("BuildSeatLayout", mock.Anything, int64(1), 4).
			Return(nil, &apperrors.CapacityError{Requested: 4, Available: 2}).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights/1/seats?passengers=4", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		var body map[string]interface{}
		require.NoError(t, decode(w.Body, &body))
		assert.EqualValues(t, 2, body["available"])
		assert.EqualValues(t, 4, body["requested"])
	})

	t.Run("InvalidPassengers", func(t *testing.T) {
		layouts := mocks.NewLayoutServiceMock()
		router := setupFlightTestRouter(mocks.NewFlightServiceMock(), layouts)
		layouts.On("BuildSeatLayout", mock.Anything, int64(1), 0).
			Return(nil, apperrors.ErrInvalidInput).Once()

		req := httptest.NewRequest("GET", "/api/v1/flights/1/seats?passengers=0", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateFlight(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())
		flights.On("CreateFlight", mock.Anything, mock.MatchedBy(func(r model.CreateFlightRequest) bool {
			return r.FlightNumber == "BR100" && r.Capacity == 120 && r.BusinessFraction == nil
		})).Return(&model.Flight{ID: 7, FlightNumber: "BR100", Capacity: 120, AvailableSeats: 120}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/admin/flights", gin.H{
			"flight_number":  "BR100",
			"origin":         "TPE",
			"destination":    "NRT",
			"departure_time": "2026-11-01T08:00:00Z",
			"arrival_time":   "2026-11-01T11:00:00Z",
			"capacity":       120,
			"base_fare":      100,
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		flights.AssertExpectations(t)
	})

	t.Run("BindingError", func(t *testing.T) {
		flights := mocks.NewFlightServiceMock()
		router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())

		req := createJSONHTTPRequest("POST", "/api/v1/admin/flights", InvalidJSON)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		flights.AssertNotCalled(t, "CreateFlight", mock.Anything, mock.Anything)
	})
}

func TestUpdateFlight_ActiveTickets(t *testing.T) {
	flights := mocks.NewFlightServiceMock()
	router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())
	flights.On("UpdateFlight", mock.Anything, int64(1), mock.MatchedBy(func(p model.UpdateFlightParams) bool {
		return p.Capacity != nil && *p.Capacity == 200 && p.BaseFare == nil
	})).Return(nil, apperrors.ErrFlightHasActiveTickets).Once()

	req := createJSONHTTPRequest("PUT", "/api/v1/admin/flights/1", gin.H{"capacity": 200})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	flights.AssertExpectations(t)
}

func TestDeleteFlight(t *testing.T) {
	flights := mocks.NewFlightServiceMock()
	router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())
	flights.On("DeleteFlight", mock.Anything, int64(1)).Return(nil).Once()

	req := httptest.NewRequest("DELETE", "/api/v1/admin/flights/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecountAndAvailability(t *testing.T) {
	flights := mocks.NewFlightServiceMock()
	router := setupFlightTestRouter(flights, mocks.NewLayoutServiceMock())
	availability := &model.FlightAvailability{FlightID: 1, Capacity: 6, AvailableSeats: 5}
	flights.On("RecountAvailability", mock.Anything, int64(1)).Return(availability, nil).Once()
	flights.On("GetAvailability", mock.Anything, int64(1)).Return(availability, nil).Once()

	for _, r := range []*http.Request{
		httptest.NewRequest("POST", "/api/v1/admin/flights/1/recount", nil),
		httptest.NewRequest("GET", "/api/v1/flights/1/availability", nil),
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"flight_id":1,"capacity":6,"available_seats":5,"version":0}`, w.Body.String())
	}
	flights.AssertExpectations(t)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": handler.PingFunc(func(context.Context) error { return nil }),
		"redis":    handler.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"postgres":"ok","redis":"connection refused"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
