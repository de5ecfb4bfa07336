package handler

import (
	"errors"
	"net/http"

	"flight-reservation/internal/model"
	"flight-reservation/internal/service"
	apperrors "flight-reservation/pkg/app_errors"
	"flight-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	reservationService  service.ReservationService
	cancellationService service.CancellationService
	ticketService       service.TicketService
	layoutService       service.LayoutService
}

func NewBookingHandler(
	reservationService service.ReservationService,
	cancellationService service.CancellationService,
	ticketService service.TicketService,
	layoutService service.LayoutService,
) *BookingHandler {
	return &BookingHandler{
		reservationService:  reservationService,
		cancellationService: cancellationService,
		ticketService:       ticketService,
		layoutService:       layoutService,
	}
}

func (h *BookingHandler) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.POST("flights/:id/reservations", h.Reserve)
	api.GET("tickets", h.ListTickets)
	api.GET("tickets/:id", h.GetTicket)
	api.PUT("tickets/:id/cancel", h.CancelTicket)

	admin.POST("flights/:id/reservations", h.ReserveOnBehalf)
	admin.PUT("tickets/:id/cancel", h.AdminCancelTicket)
}

type PassengerSeatRequest struct {
	FullName       string   `json:"full_name"`
	PassportNumber *string  `json:"passport_number"`
	SeatID         int64    `json:"seat_id" binding:"required"`
	Price          *float64 `json:"price"`
}

// ReserveRequest 購物車：每位乘客一個座位
type ReserveRequest struct {
	Passengers    []PassengerSeatRequest `json:"passengers"`
	ExpectedTotal *float64               `json:"expected_total"`
}

// ReserveOnBehalfRequest 員工代訂需指定乘客
type ReserveOnBehalfRequest struct {
	PassengerID int64 `json:"passenger_id" binding:"required"`
	ReserveRequest
}

func (r ReserveRequest) toModel(flightID, passengerID int64) model.ReserveSeatsRequest {
	items := make([]model.PassengerSeat, 0, len(r.Passengers))
	for _, p := range r.Passengers {
		items = append(items, model.PassengerSeat{
			Passenger: model.PassengerInfo{FullName: p.FullName, PassportNumber: p.PassportNumber},
			SeatID:    p.SeatID,
			Price:     p.Price,
		})
	}
	return model.ReserveSeatsRequest{
		FlightID:      flightID,
		PassengerID:   passengerID,
		Items:         items,
		ExpectedTotal: r.ExpectedTotal,
	}
}

func (h *BookingHandler) Reserve(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	flightID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReserveRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	h.reserve(c, req.toModel(flightID, identity.PassengerID), "ReserveSeats")
}

func (h *BookingHandler) ReserveOnBehalf(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	flightID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReserveOnBehalfRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	reserve := req.ReserveRequest.toModel(flightID, req.PassengerID)
	reserve.BookedBy = &identity.PassengerID
	h.reserve(c, reserve, "ReserveSeatsOnBehalf")
}

func (h *BookingHandler) reserve(c *gin.Context, req model.ReserveSeatsRequest, operation string) {
	result, err := h.reservationService.ReserveSeats(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, operation, h.layoutAfterFailure(c, req.FlightID, err))
		return
	}
	handleSuccess(c, result, http.StatusCreated)
}

// layoutAfterFailure 座位相關失敗時附上最新座位圖，讓使用者重新選位
func (h *BookingHandler) layoutAfterFailure(c *gin.Context, flightID int64, err error) gin.H {
	var seatErr *apperrors.SeatError
	if !errors.As(err, &seatErr) && !errors.Is(err, apperrors.ErrInsufficientCapacity) {
		return nil
	}

	layout, layoutErr := h.layoutService.CurrentLayout(c.Request.Context(), flightID)
	if layoutErr != nil {
		logger.WithComponent("handler").Warn("Failed to rebuild seat layout",
			zap.Int64("flight_id", flightID), zap.Error(layoutErr))
		return nil
	}
	return gin.H{"layout": layout}
}

// ListTickets 帶 booking_ref 時只列出該次訂位的機票
func (h *BookingHandler) ListTickets(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	if raw := c.Query("booking_ref"); raw != "" {
		ref, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking_ref"})
			return
		}
		tickets, err := h.ticketService.ListByBookingRef(c.Request.Context(), ref, &identity.PassengerID)
		if err != nil {
			handleError(c, err, "ListTicketsByBookingRef", nil)
			return
		}
		handleSuccess(c, tickets, http.StatusOK)
		return
	}

	tickets, err := h.ticketService.ListByPassenger(c.Request.Context(), identity.PassengerID)
	if err != nil {
		handleError(c, err, "ListTicketsByPassenger", nil)
		return
	}
	handleSuccess(c, tickets, http.StatusOK)
}

func (h *BookingHandler) GetTicket(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetTicket(c.Request.Context(), id, &identity.PassengerID)
	if err != nil {
		handleError(c, err, "GetTicket", nil)
		return
	}
	handleSuccess(c, ticket, http.StatusOK)
}

func (h *BookingHandler) CancelTicket(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	h.cancel(c, model.CancelTicketRequest{TicketID: id, PassengerID: &identity.PassengerID}, "CancelTicket")
}

// AdminCancelTicket 員工可取消任何乘客的機票
func (h *BookingHandler) AdminCancelTicket(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	h.cancel(c, model.CancelTicketRequest{TicketID: id, CancelledBy: &identity.PassengerID}, "AdminCancelTicket")
}

func (h *BookingHandler) cancel(c *gin.Context, req model.CancelTicketRequest, operation string) {
	result, err := h.cancellationService.CancelTicket(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, operation, nil)
		return
	}
	handleSuccess(c, result, http.StatusOK)
}
