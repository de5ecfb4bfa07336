package model

import (
	"time"

	"github.com/google/uuid"
)

type TicketEventType string

const (
	TicketEventBooked    TicketEventType = "ticket.booked"
	TicketEventCancelled TicketEventType = "ticket.cancelled"
)

// TicketEvent 交易提交後發出的事件，驅動快取更新與通知
type TicketEvent struct {
	Type           TicketEventType `json:"type"`
	BookingRef     uuid.UUID       `json:"booking_ref"`
	FlightID       int64           `json:"flight_id"`
	PassengerID    int64           `json:"passenger_id"`
	TicketIDs      []int64         `json:"ticket_ids"`
	SeatNumbers    []string        `json:"seat_numbers"`
	TotalPrice     float64         `json:"total_price"`
	AvailableSeats int             `json:"available_seats"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
