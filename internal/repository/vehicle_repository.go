package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fleet-service/internal/domain"
)

// VehicleRepository defines persistence access for fleet units.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	List(ctx context.Context) ([]*domain.Vehicle, error)
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a Postgres-backed implementation.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        INSERT INTO vehicles (plate, model, year, status, odometer_km)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		vehicle.Plate,
		vehicle.Model,
		vehicle.Year,
		vehicle.Status,
		vehicle.OdometerKM,
	).Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        UPDATE vehicles SET plate=$1, model=$2, year=$3, status=$4, odometer_km=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		vehicle.Plate,
		vehicle.Model,
		vehicle.Year,
		vehicle.Status,
		vehicle.OdometerKM,
		vehicle.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	const query = `
        SELECT id, plate, model, year, status, odometer_km, created_at, updated_at
        FROM vehicles WHERE id=$1`

	var vehicle domain.Vehicle
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.Plate,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Status,
		&vehicle.OdometerKM,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context) ([]*domain.Vehicle, error) {
	const query = `
        SELECT id, plate, model, year, status, odometer_km, created_at, updated_at
        FROM vehicles ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := rows.Scan(
			&vehicle.ID,
			&vehicle.Plate,
			&vehicle.Model,
			&vehicle.Year,
			&vehicle.Status,
			&vehicle.OdometerKM,
			&vehicle.CreatedAt,
			&vehicle.UpdatedAt,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}
	return vehicles, rows.Err()
}
