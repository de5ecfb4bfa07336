package seatmap

import (
	"sort"

	"flight-reservation/internal/model"
)

// BuildLayout 將座位與艙等投影成座位圖：商務艙在前，再依排號、欄位排序。
// 只有 available 的座位可選，其餘仍列出但標示為不可選。
func BuildLayout(flight *model.Flight, sections []*model.Section, seats []*model.Seat, passengers int) *model.LayoutResult {
	bySection := make(map[int64]*model.Section, len(sections))
	for _, s := range sections {
		bySection[s.ID] = s
	}

	descriptors := make([]model.SeatDescriptor, 0, len(seats))
	available := 0
	for _, seat := range seats {
		section, ok := bySection[seat.SectionID]
		if !ok {
			continue
		}
		selectable := seat.IsAvailable()
		if selectable {
			available++
		}
		descriptors = append(descriptors, model.SeatDescriptor{
			SeatID:      seat.ID,
			Number:      seat.Number(),
			Row:         seat.Row,
			Column:      seat.Column,
			SectionID:   section.ID,
			SectionName: section.Name,
			Class:       section.Class,
			Price:       Price(flight.BaseFare, section.PriceMultiplier),
			Selectable:  selectable,
		})
	}

	sort.SliceStable(descriptors, func(i, j int) bool {
		a, b := descriptors[i], descriptors[j]
		sa, sb := bySection[a.SectionID], bySection[b.SectionID]
		if pa, pb := sa.Class.Priority(), sb.Class.Priority(); pa != pb {
			return pa < pb
		}
		if sa.Position != sb.Position {
			return sa.Position < sb.Position
		}
		if sa.ID != sb.ID {
			return sa.ID < sb.ID
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Column < b.Column
	})

	return &model.LayoutResult{
		FlightID:       flight.ID,
		FlightNumber:   flight.FlightNumber,
		BaseFare:       flight.BaseFare,
		Capacity:       flight.Capacity,
		AvailableSeats: available,
		Passengers:     passengers,
		Seats:          descriptors,
	}
}
