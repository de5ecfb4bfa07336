package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flight-reservation/internal/model"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Flight, error)
	FindSections(ctx context.Context, flightID int64) ([]*model.Section, error)
	Search(ctx context.Context, params model.FlightSearchParams) ([]*model.Flight, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, flight *model.Flight) (*model.Flight, error)
	CreateSections(ctx context.Context, tx pgx.Tx, flightID int64, sections []*model.Section) error
	DeleteSections(ctx context.Context, tx pgx.Tx, flightID int64) error
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int64) (*model.Flight, error)
	Update(ctx context.Context, tx pgx.Tx, flight *model.Flight) (*model.Flight, error)
	RecountAvailableSeats(ctx context.Context, tx pgx.Tx, flightID int64) (int, error)
	SoftDelete(ctx context.Context, tx pgx.Tx, id int64) error
}

type FlightRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewFlightRepository(pool *pgxpool.Pool) FlightRepository {
	return &FlightRepositoryImpl{
		pool: pool,
	}
}

const flightColumns = `id, flight_number, origin, destination, departure_time, arrival_time,
		capacity, base_fare::float8, available_seats, created_at, updated_at, deleted_at`

func scanFlight(row pgx.Row) (*model.Flight, error) {
	var flight model.Flight
	err := row.Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.Origin,
		&flight.Destination,
		&flight.DepartureTime,
		&flight.ArrivalTime,
		&flight.Capacity,
		&flight.BaseFare,
		&flight.AvailableSeats,
		&flight.CreatedAt,
		&flight.UpdatedAt,
		&flight.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}
	return &flight, nil
}

func (r *FlightRepositoryImpl) FindByID(ctx context.Context, id int64) (*model.Flight, error) {
	query := `SELECT ` + flightColumns + `
		FROM flights
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanFlight(r.pool.QueryRow(ctx, query, id))
}

func (r *FlightRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int64) (*model.Flight, error) {
	query := `SELECT ` + flightColumns + `
		FROM flights
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`
	return scanFlight(tx.QueryRow(ctx, query, id))
}

func (r *FlightRepositoryImpl) FindSections(ctx context.Context, flightID int64) ([]*model.Section, error) {
	query := `
		SELECT id, flight_id, class, name, capacity, price_multiplier::float8, position
		FROM sections
		WHERE flight_id = $1
		ORDER BY position, id
	`

	rows, err := r.pool.Query(ctx, query, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := make([]*model.Section, 0)
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.FlightID, &s.Class, &s.Name, &s.Capacity, &s.PriceMultiplier, &s.Position); err != nil {
			return nil, err
		}
		sections = append(sections, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

func (r *FlightRepositoryImpl) Search(ctx context.Context, params model.FlightSearchParams) ([]*model.Flight, error) {
	conds := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argPos := 1

	if params.Origin != "" {
		conds = append(conds, fmt.Sprintf("origin = $%d", argPos))
		args = append(args, params.Origin)
		argPos++
	}
	if params.Destination != "" {
		conds = append(conds, fmt.Sprintf("destination = $%d", argPos))
		args = append(args, params.Destination)
		argPos++
	}
	if params.Date != nil {
		start := time.Date(params.Date.Year(), params.Date.Month(), params.Date.Day(), 0, 0, 0, 0, time.UTC)
		conds = append(conds, fmt.Sprintf("departure_time >= $%d AND departure_time < $%d", argPos, argPos+1))
		args = append(args, start, start.AddDate(0, 0, 1))
		argPos += 2
	}
	if params.Passengers > 0 {
		conds = append(conds, fmt.Sprintf("available_seats >= $%d", argPos))
		args = append(args, params.Passengers)
	}

	query := `SELECT ` + flightColumns + `
		FROM flights
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY departure_time, id
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, flight)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return flights, nil
}

func (r *FlightRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, flight *model.Flight) (*model.Flight, error) {
	query := `
		INSERT INTO flights (
			flight_number, origin, destination, departure_time, arrival_time,
			capacity, base_fare, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + flightColumns

	created, err := scanFlight(tx.QueryRow(ctx, query,
		flight.FlightNumber, flight.Origin, flight.Destination,
		flight.DepartureTime, flight.ArrivalTime,
		flight.Capacity, flight.BaseFare, flight.AvailableSeats,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}

	return created, nil
}

// CreateSections 依序寫入艙等並回填 ID
func (r *FlightRepositoryImpl) CreateSections(ctx context.Context, tx pgx.Tx, flightID int64, sections []*model.Section) error {
	query := `
		INSERT INTO sections (flight_id, class, name, capacity, price_multiplier, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for _, s := range sections {
		s.FlightID = flightID
		if err := tx.QueryRow(ctx, query,
			s.FlightID, s.Class, s.Name, s.Capacity, s.PriceMultiplier, s.Position,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("failed to create section %s: %w", s.Name, err)
		}
	}

	return nil
}

// DeleteSections 刪除航班所有艙等，座位隨之級聯刪除
func (r *FlightRepositoryImpl) DeleteSections(ctx context.Context, tx pgx.Tx, flightID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM sections WHERE flight_id = $1`, flightID)
	return err
}

// Update 寫入可編輯欄位；容量與 available_seats 在同一個陳述式內更新，避免違反範圍檢查
func (r *FlightRepositoryImpl) Update(ctx context.Context, tx pgx.Tx, flight *model.Flight) (*model.Flight, error) {
	query := `
		UPDATE flights
		SET flight_number = $1, origin = $2, destination = $3,
			departure_time = $4, arrival_time = $5,
			capacity = $6, base_fare = $7, updated_at = $8,
			available_seats = (
				SELECT COUNT(*)
				FROM seats s
				JOIN sections sec ON sec.id = s.section_id
				WHERE sec.flight_id = $9 AND s.status = 'available'
			)
		WHERE id = $9 AND deleted_at IS NULL
		RETURNING ` + flightColumns

	return scanFlight(tx.QueryRow(ctx, query,
		flight.FlightNumber, flight.Origin, flight.Destination,
		flight.DepartureTime, flight.ArrivalTime,
		flight.Capacity, flight.BaseFare, time.Now().UTC(),
		flight.ID,
	))
}

// RecountAvailableSeats 以 seats 表的即時計數覆寫 available_seats，不做加減
func (r *FlightRepositoryImpl) RecountAvailableSeats(ctx context.Context, tx pgx.Tx, flightID int64) (int, error) {
	query := `
		UPDATE flights
		SET available_seats = (
				SELECT COUNT(*)
				FROM seats s
				JOIN sections sec ON sec.id = s.section_id
				WHERE sec.flight_id = $1 AND s.status = 'available'
			),
			updated_at = $2
		WHERE id = $1
		RETURNING available_seats
	`

	var available int
	err := tx.QueryRow(ctx, query, flightID, time.Now().UTC()).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrFlightNotFound
		}
		return 0, err
	}

	return available, nil
}

func (r *FlightRepositoryImpl) SoftDelete(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `
		UPDATE flights
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrFlightNotFound
	}

	return nil
}
