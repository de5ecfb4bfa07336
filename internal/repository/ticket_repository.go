package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flight-reservation/internal/model"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type TicketRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Ticket, error)
	ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Ticket, error)
	ListByBookingRef(ctx context.Context, bookingRef uuid.UUID) ([]*model.Ticket, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int64) (*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.TicketStatus) error
	CountActiveByFlight(ctx context.Context, tx pgx.Tx, flightID int64) (int, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, booking_ref, passenger_id, passenger_name, passport_number, booked_by,
		flight_id, section_id, seat_id, seat_number, section_name, price::float8, status,
		ordered_at, created_at, updated_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.BookingRef,
		&ticket.PassengerID,
		&ticket.PassengerName,
		&ticket.PassportNumber,
		&ticket.BookedBy,
		&ticket.FlightID,
		&ticket.SectionID,
		&ticket.SeatID,
		&ticket.SeatNumber,
		&ticket.SectionName,
		&ticket.Price,
		&ticket.Status,
		&ticket.OrderedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			booking_ref, passenger_id, passenger_name, passport_number, booked_by,
			flight_id, section_id, seat_id, seat_number, section_name, price, status, ordered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + ticketColumns

	created, err := scanTicket(tx.QueryRow(ctx, query,
		ticket.BookingRef, ticket.PassengerID, ticket.PassengerName, ticket.PassportNumber, ticket.BookedBy,
		ticket.FlightID, ticket.SectionID, ticket.SeatID, ticket.SeatNumber, ticket.SectionName,
		ticket.Price, ticket.Status, ticket.OrderedAt,
	))
	if err != nil {
		// 同一座位已有有效機票
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && ticket.SeatID != nil {
			return nil, apperrors.NewSeatError(apperrors.ErrSeatNoLongerAvailable, *ticket.SeatID)
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return created, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int64) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
	`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *TicketRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int64) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
		FOR UPDATE
	`
	return scanTicket(tx.QueryRow(ctx, query, id))
}

func (r *TicketRepositoryImpl) ListByPassenger(ctx context.Context, passengerID int64) ([]*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE passenger_id = $1
		ORDER BY ordered_at DESC, id
	`
	return r.list(ctx, query, passengerID)
}

func (r *TicketRepositoryImpl) ListByBookingRef(ctx context.Context, bookingRef uuid.UUID) ([]*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE booking_ref = $1
		ORDER BY id
	`
	return r.list(ctx, query, bookingRef)
}

func (r *TicketRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]*model.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

// UpdateStatus 依狀態機轉換，非法轉換回傳 ErrInvalidInput
func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.TicketStatus) error {
	var current model.TicketStatus
	err := tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTicketNotFound
		}
		return err
	}

	if !current.CanTransitionTo(status) {
		if current == model.TicketStatusCancelled {
			return apperrors.ErrAlreadyCancelled
		}
		return fmt.Errorf("%w: ticket %d cannot transition from %s to %s", apperrors.ErrInvalidInput, id, current, status)
	}

	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, query, status, time.Now().UTC(), id, current)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

// CountActiveByFlight 未取消的機票數
func (r *TicketRepositoryImpl) CountActiveByFlight(ctx context.Context, tx pgx.Tx, flightID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tickets
		WHERE flight_id = $1 AND status <> 'cancelled'
	`

	var count int
	if err := tx.QueryRow(ctx, query, flightID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
