package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fleet-service/internal/domain"
)

// TripRepository defines persistence access for trips.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	Update(ctx context.Context, trip *domain.Trip) error
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
	ListByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error)
}

type tripRepository struct {
	pool *pgxpool.Pool
}

// NewTripRepository returns a Postgres-backed implementation.
func NewTripRepository(pool *pgxpool.Pool) TripRepository {
	return &tripRepository{pool: pool}
}

func (r *tripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	const query = `
        INSERT INTO trips (driver_id, vehicle_id, shipment_id, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		trip.DriverID,
		trip.VehicleID,
		trip.ShipmentID,
		trip.Status,
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
}

func (r *tripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	const query = `
        UPDATE trips SET status=$1, started_at=$2, ended_at=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		trip.Status,
		trip.StartedAt,
		trip.EndedAt,
		trip.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	const query = `
        SELECT id, driver_id, vehicle_id, shipment_id, status, started_at, ended_at, created_at, updated_at
        FROM trips WHERE id=$1`

	var trip domain.Trip
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.VehicleID,
		&trip.ShipmentID,
		&trip.Status,
		&trip.StartedAt,
		&trip.EndedAt,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) ListByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error) {
	const query = `
        SELECT id, driver_id, vehicle_id, shipment_id, status, started_at, ended_at, created_at, updated_at
        FROM trips WHERE driver_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		var trip domain.Trip
		if err := rows.Scan(
			&trip.ID,
			&trip.DriverID,
			&trip.VehicleID,
			&trip.ShipmentID,
			&trip.Status,
			&trip.StartedAt,
			&trip.EndedAt,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}
	return trips, rows.Err()
}
