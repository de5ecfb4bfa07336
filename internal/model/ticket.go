package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TicketStatus 機票狀態類型
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusBooked    TicketStatus = "booked"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusPending, TicketStatusBooked, TicketStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusPending:   {TicketStatusBooked, TicketStatusCancelled},
		TicketStatusBooked:    {TicketStatusCancelled},
		TicketStatusCancelled: {}, // 不能轉換到任何狀態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Ticket 一位乘客在一個航班上佔用一個座位；不做實體刪除
type Ticket struct {
	ID             int64        `json:"id" db:"id"`
	BookingRef     uuid.UUID    `json:"booking_ref" db:"booking_ref"`
	PassengerID    int64        `json:"passenger_id" db:"passenger_id"`
	PassengerName  string       `json:"passenger_name" db:"passenger_name"`
	PassportNumber *string      `json:"passport_number,omitempty" db:"passport_number"`
	BookedBy       *int64       `json:"booked_by,omitempty" db:"booked_by"`
	FlightID       int64        `json:"flight_id" db:"flight_id"`
	SectionID      *int64       `json:"section_id,omitempty" db:"section_id"`
	SeatID         *int64       `json:"seat_id,omitempty" db:"seat_id"`
	SeatNumber     string       `json:"seat_number" db:"seat_number"`
	SectionName    string       `json:"section_name" db:"section_name"`
	Price          float64      `json:"price" db:"price"`
	Status         TicketStatus `json:"status" db:"status"`
	OrderedAt      time.Time    `json:"ordered_at" db:"ordered_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// IsActive 未取消的機票佔用座位
func (t *Ticket) IsActive() bool {
	return t.Status != TicketStatusCancelled
}

// SeatNumber 由排號與欄位組成顯示座號
func SeatNumber(row int, column string) string {
	return fmt.Sprintf("%d%s", row, column)
}
