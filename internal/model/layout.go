package model

// SeatDescriptor 座位圖上的一格
type SeatDescriptor struct {
	SeatID      int64        `json:"seat_id"`
	Number      string       `json:"number"`
	Row         int          `json:"row"`
	Column      string       `json:"column"`
	SectionID   int64        `json:"section_id"`
	SectionName string       `json:"section_name"`
	Class       SectionClass `json:"class"`
	Price       float64      `json:"price"`
	Selectable  bool         `json:"selectable"`
}

// LayoutResult 整架飛機的座位圖，含不可選的座位
type LayoutResult struct {
	FlightID       int64            `json:"flight_id"`
	FlightNumber   string           `json:"flight_number"`
	BaseFare       float64          `json:"base_fare"`
	Capacity       int              `json:"capacity"`
	AvailableSeats int              `json:"available_seats"`
	Passengers     int              `json:"passengers"`
	Seats          []SeatDescriptor `json:"seats"`
}
