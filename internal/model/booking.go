package model

import "github.com/google/uuid"

// PassengerInfo 搭乘者資料，由訂位者填寫
type PassengerInfo struct {
	FullName       string  `json:"full_name"`
	PassportNumber *string `json:"passport_number"`
}

// PassengerSeat 購物車中的一筆：一位乘客對應一個座位
type PassengerSeat struct {
	Passenger PassengerInfo `json:"passenger"`
	SeatID    int64         `json:"seat_id"`
	// Price 前端回傳的價格，只用於比對，不作為計價依據
	Price *float64 `json:"price,omitempty"`
}

// ReserveSeatsRequest 尚未提交的訂位
type ReserveSeatsRequest struct {
	FlightID    int64
	PassengerID int64
	// BookedBy 員工代訂時的操作者
	BookedBy      *int64
	Items         []PassengerSeat
	ExpectedTotal *float64
}

// SeatIDs 依原順序回傳所選座位
func (r ReserveSeatsRequest) SeatIDs() []int64 {
	ids := make([]int64, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.SeatID)
	}
	return ids
}

// ReservationResult 訂位成功結果
type ReservationResult struct {
	BookingRef     uuid.UUID `json:"booking_ref"`
	TicketIDs      []int64   `json:"ticket_ids"`
	Tickets        []*Ticket `json:"tickets"`
	TotalPrice     float64   `json:"total_price"`
	PriceAdjusted  bool      `json:"price_adjusted"`
	AvailableSeats int       `json:"available_seats"`
}

type CancellationStatus string

const (
	CancellationStatusCancelled        CancellationStatus = "cancelled"
	CancellationStatusAlreadyCancelled CancellationStatus = "already_cancelled"
)

// CancelTicketRequest PassengerID 不為 nil 時只能取消自己的機票
type CancelTicketRequest struct {
	TicketID    int64
	PassengerID *int64
	CancelledBy *int64
}

// CancellationResult 取消結果；SeatReleased 為 false 時 Warning 說明原因。
// AvailableSeats 只在本次實際取消時回填。
type CancellationResult struct {
	TicketID       int64              `json:"ticket_id"`
	Status         CancellationStatus `json:"status"`
	SeatReleased   bool               `json:"seat_released"`
	Warning        string             `json:"warning,omitempty"`
	AvailableSeats *int               `json:"available_seats,omitempty"`
}

// FlightAvailability 航班剩餘座位摘要，供快取與查詢使用
type FlightAvailability struct {
	FlightID       int64 `json:"flight_id"`
	Capacity       int   `json:"capacity"`
	AvailableSeats int   `json:"available_seats"`
	Version        int64 `json:"version"`
}
