package seatmap

import "flight-reservation/internal/model"

var (
	// 商務艙略過 B、E 兩欄
	businessColumns = []string{"A", "C", "D", "F"}
	standardColumns = []string{"A", "B", "C", "D", "E", "F"}
)

// Columns 回傳艙等每排的欄位
func Columns(section *model.Section) []string {
	if section.IsBusiness() {
		return businessColumns
	}
	return standardColumns
}

// GenerateSeats 從 startRow 開始逐排填滿 section.Capacity 個座位，最後一排可能不滿。
// 回傳座位與下一個未使用的排號。
func GenerateSeats(section *model.Section, startRow int) ([]*model.Seat, int) {
	if section.Capacity <= 0 {
		return nil, startRow
	}

	columns := Columns(section)
	seats := make([]*model.Seat, 0, section.Capacity)
	row := startRow
	for len(seats) < section.Capacity {
		for _, column := range columns {
			if len(seats) == section.Capacity {
				break
			}
			seats = append(seats, &model.Seat{
				SectionID: section.ID,
				Row:       row,
				Column:    column,
				Status:    model.SeatStatusAvailable,
			})
		}
		row++
	}
	return seats, row
}

// GenerateFlightSeats 依艙等順序從第 1 排開始串接產生整架飛機的座位
func GenerateFlightSeats(sections []*model.Section) [][]*model.Seat {
	plan := make([][]*model.Seat, len(sections))
	row := 1
	for i, section := range sections {
		plan[i], row = GenerateSeats(section, row)
	}
	return plan
}
