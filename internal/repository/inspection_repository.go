package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fleet-service/internal/domain"
)

// InspectionRepository defines persistence access for vehicle inspections.
type InspectionRepository interface {
	Create(ctx context.Context, inspection *domain.Inspection) error
	GetByID(ctx context.Context, id int64) (*domain.Inspection, error)
	ListByVehicle(ctx context.Context, vehicleID int64) ([]*domain.Inspection, error)
}

type inspectionRepository struct {
	pool *pgxpool.Pool
}

// NewInspectionRepository returns a Postgres-backed implementation.
func NewInspectionRepository(pool *pgxpool.Pool) InspectionRepository {
	return &inspectionRepository{pool: pool}
}

func (r *inspectionRepository) Create(ctx context.Context, inspection *domain.Inspection) error {
	items, err := json.Marshal(inspection.Items)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO inspections (vehicle_id, inspector_id, items, result, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		inspection.VehicleID,
		inspection.InspectorID,
		items,
		inspection.Result,
		inspection.Notes,
	).Scan(&inspection.ID, &inspection.CreatedAt)
}

func (r *inspectionRepository) GetByID(ctx context.Context, id int64) (*domain.Inspection, error) {
	const query = `
        SELECT id, vehicle_id, inspector_id, items, result, notes, created_at
        FROM inspections WHERE id=$1`

	var inspection domain.Inspection
	var items []byte
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&inspection.ID,
		&inspection.VehicleID,
		&inspection.InspectorID,
		&items,
		&inspection.Result,
		&inspection.Notes,
		&inspection.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &inspection.Items); err != nil {
		return nil, err
	}
	return &inspection, nil
}

func (r *inspectionRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]*domain.Inspection, error) {
	const query = `
        SELECT id, vehicle_id, inspector_id, items, result, notes, created_at
        FROM inspections WHERE vehicle_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inspections []*domain.Inspection
	for rows.Next() {
		var inspection domain.Inspection
		var items []byte
		if err := rows.Scan(
			&inspection.ID,
			&inspection.VehicleID,
			&inspection.InspectorID,
			&items,
			&inspection.Result,
			&inspection.Notes,
			&inspection.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &inspection.Items); err != nil {
			return nil, err
		}
		inspections = append(inspections, &inspection)
	}
	return inspections, rows.Err()
}
