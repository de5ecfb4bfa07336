package repository

import (
	"context"
	"fmt"
	"time"

	"flight-reservation/internal/model"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeatRepository 座位狀態只透過交易方法寫入
type SeatRepository interface {
	ListByFlight(ctx context.Context, flightID int64) ([]*model.Seat, error)
	CountAvailable(ctx context.Context, flightID int64) (int, error)

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, seats []*model.Seat) (int64, error)
	FindForFlightWithLock(ctx context.Context, tx pgx.Tx, flightID int64, seatIDs []int64) ([]*model.BookableSeat, error)
	MarkBooked(ctx context.Context, tx pgx.Tx, seatID int64, ticketID int64) error
	MarkAvailable(ctx context.Context, tx pgx.Tx, seatID int64) (bool, error)
}

type SeatRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSeatRepository(pool *pgxpool.Pool) SeatRepository {
	return &SeatRepositoryImpl{
		pool: pool,
	}
}

func (r *SeatRepositoryImpl) ListByFlight(ctx context.Context, flightID int64) ([]*model.Seat, error) {
	query := `
		SELECT s.id, s.section_id, s.seat_row, s.seat_column, s.status, s.ticket_id, s.updated_at
		FROM seats s
		JOIN sections sec ON sec.id = s.section_id
		WHERE sec.flight_id = $1
		ORDER BY s.seat_row, s.seat_column
	`

	rows, err := r.pool.Query(ctx, query, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]*model.Seat, 0)
	for rows.Next() {
		var seat model.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.SectionID,
			&seat.Row,
			&seat.Column,
			&seat.Status,
			&seat.TicketID,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *SeatRepositoryImpl) CountAvailable(ctx context.Context, flightID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM seats s
		JOIN sections sec ON sec.id = s.section_id
		WHERE sec.flight_id = $1 AND s.status = 'available'
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, flightID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch 以 COPY 大量寫入產生好的座位
func (r *SeatRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, seats []*model.Seat) (int64, error) {
	now := time.Now().UTC()
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"seats"},
		[]string{"section_id", "seat_row", "seat_column", "status", "updated_at"},
		pgx.CopyFromSlice(len(seats), func(i int) ([]any, error) {
			s := seats[i]
			return []any{s.SectionID, s.Row, s.Column, string(s.Status), now}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create seats: %w", err)
	}
	return n, nil
}

// FindForFlightWithLock 鎖定屬於該航班的指定座位；依 id 排序上鎖避免死結。
// 不屬於該航班的 id 不會出現在結果中。
func (r *SeatRepositoryImpl) FindForFlightWithLock(ctx context.Context, tx pgx.Tx, flightID int64, seatIDs []int64) ([]*model.BookableSeat, error) {
	query := `
		SELECT s.id, s.section_id, s.seat_row, s.seat_column, s.status, s.ticket_id, s.updated_at,
			sec.flight_id, sec.name, sec.class, sec.price_multiplier::float8
		FROM seats s
		JOIN sections sec ON sec.id = s.section_id
		WHERE sec.flight_id = $1 AND s.id = ANY($2)
		ORDER BY s.id
		FOR UPDATE OF s
	`

	rows, err := tx.Query(ctx, query, flightID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]*model.BookableSeat, 0, len(seatIDs))
	for rows.Next() {
		var seat model.BookableSeat
		err := rows.Scan(
			&seat.ID,
			&seat.SectionID,
			&seat.Row,
			&seat.Column,
			&seat.Status,
			&seat.TicketID,
			&seat.UpdatedAt,
			&seat.FlightID,
			&seat.SectionName,
			&seat.SectionClass,
			&seat.PriceMultiplier,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

// MarkBooked 只有仍為 available 的座位會被更新，否則回傳 ErrSeatNoLongerAvailable
func (r *SeatRepositoryImpl) MarkBooked(ctx context.Context, tx pgx.Tx, seatID int64, ticketID int64) error {
	query := `
		UPDATE seats
		SET status = 'booked', ticket_id = $1, updated_at = $2
		WHERE id = $3 AND status = 'available'
	`

	result, err := tx.Exec(ctx, query, ticketID, time.Now().UTC(), seatID)
	if err != nil {
		return err
	}

	if result.RowsAffected() != 1 {
		return apperrors.NewSeatError(apperrors.ErrSeatNoLongerAvailable, seatID)
	}

	return nil
}

// MarkAvailable 釋放座位；座位已是 available 或已不存在時回傳 false
func (r *SeatRepositoryImpl) MarkAvailable(ctx context.Context, tx pgx.Tx, seatID int64) (bool, error) {
	query := `
		UPDATE seats
		SET status = 'available', ticket_id = NULL, updated_at = $1
		WHERE id = $2 AND status = 'booked'
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), seatID)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() == 1, nil
}
