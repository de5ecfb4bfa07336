package handler

import (
	"net/http"
	"strconv"
	"time"

	"flight-reservation/internal/model"
	"flight-reservation/internal/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type FlightHandler struct {
	flightService service.FlightService
	layoutService service.LayoutService
}

func NewFlightHandler(flightService service.FlightService, layoutService service.LayoutService) *FlightHandler {
	return &FlightHandler{flightService: flightService, layoutService: layoutService}
}

// RegisterRoutes 查詢路由需登入，管理路由限員工
func (h *FlightHandler) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.GET("flights", h.Search)
	api.GET("flights/:id", h.Get)
	api.GET("flights/:id/availability", h.Availability)
	api.GET("flights/:id/seats", h.SeatLayout)

	admin.POST("flights", h.Create)
	admin.PUT("flights/:id", h.Update)
	admin.DELETE("flights/:id", h.Delete)
	admin.POST("flights/:id/recount", h.Recount)
}

type SearchFlightsQuery struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date"`
	Passengers  int    `form:"passengers"`
}

// CreateFlightRequest 新增航班請求；時間為 RFC3339
type CreateFlightRequest struct {
	FlightNumber     string    `json:"flight_number" binding:"required"`
	Origin           string    `json:"origin" binding:"required"`
	Destination      string    `json:"destination" binding:"required"`
	DepartureTime    time.Time `json:"departure_time" binding:"required"`
	ArrivalTime      time.Time `json:"arrival_time" binding:"required"`
	Capacity         int       `json:"capacity" binding:"required"`
	BaseFare         float64   `json:"base_fare"`
	BusinessFraction *float64  `json:"business_fraction"`
}

// UpdateFlightRequest 只更新有帶的欄位
type UpdateFlightRequest struct {
	FlightNumber     *string    `json:"flight_number"`
	Origin           *string    `json:"origin"`
	Destination      *string    `json:"destination"`
	DepartureTime    *time.Time `json:"departure_time"`
	ArrivalTime      *time.Time `json:"arrival_time"`
	BaseFare         *float64   `json:"base_fare"`
	Capacity         *int       `json:"capacity"`
	BusinessFraction *float64   `json:"business_fraction"`
}

func (h *FlightHandler) Search(c *gin.Context) {
	var q SearchFlightsQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}

	params := model.FlightSearchParams{
		Origin:      q.Origin,
		Destination: q.Destination,
		Passengers:  q.Passengers,
	}
	if q.Date != "" {
		date, err := time.Parse(dateLayout, q.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		params.Date = &date
	}

	flights, err := h.flightService.SearchFlights(c.Request.Context(), params)
	if err != nil {
		handleError(c, err, "SearchFlights", nil)
		return
	}
	handleSuccess(c, flights, http.StatusOK)
}

func (h *FlightHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	flight, err := h.flightService.GetFlight(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "GetFlight", nil)
		return
	}
	handleSuccess(c, flight, http.StatusOK)
}

func (h *FlightHandler) Availability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	availability, err := h.flightService.GetAvailability(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "GetAvailability", nil)
		return
	}
	handleSuccess(c, availability, http.StatusOK)
}

// SeatLayout passengers 未帶時視為 1 人
func (h *FlightHandler) SeatLayout(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	passengers := 1
	if raw := c.Query("passengers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid passengers"})
			return
		}
		passengers = n
	}

	layout, err := h.layoutService.BuildSeatLayout(c.Request.Context(), id, passengers)
	if err != nil {
		handleError(c, err, "BuildSeatLayout", nil)
		return
	}
	handleSuccess(c, layout, http.StatusOK)
}

func (h *FlightHandler) Create(c *gin.Context) {
	var req CreateFlightRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	flight, err := h.flightService.CreateFlight(c.Request.Context(), model.CreateFlightRequest{
		FlightNumber:     req.FlightNumber,
		Origin:           req.Origin,
		Destination:      req.Destination,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		Capacity:         req.Capacity,
		BaseFare:         req.BaseFare,
		BusinessFraction: req.BusinessFraction,
	})
	if err != nil {
		handleError(c, err, "CreateFlight", nil)
		return
	}
	handleSuccess(c, flight, http.StatusCreated)
}

func (h *FlightHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateFlightRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	flight, err := h.flightService.UpdateFlight(c.Request.Context(), id, model.UpdateFlightParams{
		FlightNumber:     req.FlightNumber,
		Origin:           req.Origin,
		Destination:      req.Destination,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		BaseFare:         req.BaseFare,
		Capacity:         req.Capacity,
		BusinessFraction: req.BusinessFraction,
	})
	if err != nil {
		handleError(c, err, "UpdateFlight", nil)
		return
	}
	handleSuccess(c, flight, http.StatusOK)
}

func (h *FlightHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.flightService.DeleteFlight(c.Request.Context(), id); err != nil {
		handleError(c, err, "DeleteFlight", nil)
		return
	}
	handleSuccess(c, nil, http.StatusNoContent)
}

func (h *FlightHandler) Recount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	availability, err := h.flightService.RecountAvailability(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "RecountAvailability", nil)
		return
	}
	handleSuccess(c, availability, http.StatusOK)
}

