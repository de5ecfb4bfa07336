package model

import (
	"strings"
	"time"
)

// Flight 航班；AvailableSeats 為 seats 表中 available 座位數的快取，只由訂位/取消交易重算
type Flight struct {
	ID             int64      `json:"id" db:"id"`
	FlightNumber   string     `json:"flight_number" db:"flight_number"`
	Origin         string     `json:"origin" db:"origin"`
	Destination    string     `json:"destination" db:"destination"`
	DepartureTime  time.Time  `json:"departure_time" db:"departure_time"`
	ArrivalTime    time.Time  `json:"arrival_time" db:"arrival_time"`
	Capacity       int        `json:"capacity" db:"capacity"`
	BaseFare       float64    `json:"base_fare" db:"base_fare"`
	AvailableSeats int        `json:"available_seats" db:"available_seats"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	Sections []*Section `json:"sections,omitempty" db:"-"`
}

// IsDeleted 檢查航班是否已刪除
func (f *Flight) IsDeleted() bool {
	return f.DeletedAt != nil
}

type SectionClass string

const (
	SectionClassBusiness SectionClass = "business"
	SectionClassEconomy  SectionClass = "economy"
)

// Priority 座位圖排序用，商務艙排在經濟艙前
func (c SectionClass) Priority() int {
	switch c {
	case SectionClassBusiness:
		return 0
	case SectionClassEconomy:
		return 1
	}
	return 2
}

// Section 航班內的一個艙等
type Section struct {
	ID              int64        `json:"id" db:"id"`
	FlightID        int64        `json:"flight_id" db:"flight_id"`
	Class           SectionClass `json:"class" db:"class"`
	Name            string       `json:"name" db:"name"`
	Capacity        int          `json:"capacity" db:"capacity"`
	PriceMultiplier float64      `json:"price_multiplier" db:"price_multiplier"`
	Position        int          `json:"position" db:"position"`
}

// IsBusiness 商務艙採 4 座一排
func (s *Section) IsBusiness() bool {
	return s.Class == SectionClassBusiness || strings.EqualFold(s.Name, string(SectionClassBusiness))
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusBooked    SeatStatus = "booked"
)

func (s SeatStatus) IsValid() bool {
	return s == SeatStatusAvailable || s == SeatStatusBooked
}

// Seat 艙等內的實體座位，(Row, Column) 在同一艙等內唯一
type Seat struct {
	ID        int64      `json:"id" db:"id"`
	SectionID int64      `json:"section_id" db:"section_id"`
	Row       int        `json:"row" db:"seat_row"`
	Column    string     `json:"column" db:"seat_column"`
	Status    SeatStatus `json:"status" db:"status"`
	TicketID  *int64     `json:"ticket_id,omitempty" db:"ticket_id"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Number 顯示用座位號，例如 "12A"
func (s *Seat) Number() string {
	return SeatNumber(s.Row, s.Column)
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatStatusAvailable
}

// BookableSeat 交易中鎖定的座位與其艙等資料
type BookableSeat struct {
	Seat
	FlightID        int64        `json:"flight_id"`
	SectionName     string       `json:"section_name"`
	SectionClass    SectionClass `json:"section_class"`
	PriceMultiplier float64      `json:"price_multiplier"`
}

// CreateFlightRequest 新增航班；BusinessFraction 為 nil 時使用設定值
type CreateFlightRequest struct {
	FlightNumber     string
	Origin           string
	Destination      string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Capacity         int
	BaseFare         float64
	BusinessFraction *float64
}

// UpdateFlightParams 航班修改；容量或艙等切分變動時會重建座位
type UpdateFlightParams struct {
	FlightNumber     *string
	Origin           *string
	Destination      *string
	DepartureTime    *time.Time
	ArrivalTime      *time.Time
	BaseFare         *float64
	Capacity         *int
	BusinessFraction *float64
}

// RegeneratesSeats 是否需要刪除並重建艙等與座位
func (p UpdateFlightParams) RegeneratesSeats() bool {
	return p.Capacity != nil || p.BusinessFraction != nil
}

// FlightSearchParams 航班查詢條件，零值欄位不過濾
type FlightSearchParams struct {
	Origin      string
	Destination string
	Date        *time.Time
	Passengers  int
}
