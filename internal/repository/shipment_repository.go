package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fleet-service/internal/domain"
)

// ShipmentRepository defines persistence access for cargo orders.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *domain.Shipment) error
	UpdateStatus(ctx context.Context, id int64, status domain.ShipmentStatus) error
	GetByID(ctx context.Context, id int64) (*domain.Shipment, error)
	List(ctx context.Context, status *domain.ShipmentStatus) ([]*domain.Shipment, error)
}

type shipmentRepository struct {
	pool *pgxpool.Pool
}

// NewShipmentRepository returns a Postgres-backed implementation.
func NewShipmentRepository(pool *pgxpool.Pool) ShipmentRepository {
	return &shipmentRepository{pool: pool}
}

func (r *shipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	const query = `
        INSERT INTO shipments (reference, origin, destination, weight_kg, status, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		shipment.Reference,
		shipment.Origin,
		shipment.Destination,
		shipment.WeightKG,
		shipment.Status,
		shipment.CreatedBy,
	).Scan(&shipment.ID, &shipment.CreatedAt, &shipment.UpdatedAt)
}

func (r *shipmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.ShipmentStatus) error {
	const query = `UPDATE shipments SET status=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Shipment, error) {
	const query = `
        SELECT id, reference, origin, destination, weight_kg, status, created_by, created_at, updated_at
        FROM shipments WHERE id=$1`

	var shipment domain.Shipment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&shipment.ID,
		&shipment.Reference,
		&shipment.Origin,
		&shipment.Destination,
		&shipment.WeightKG,
		&shipment.Status,
		&shipment.CreatedBy,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) List(ctx context.Context, status *domain.ShipmentStatus) ([]*domain.Shipment, error) {
	query := `
        SELECT id, reference, origin, destination, weight_kg, status, created_by, created_at, updated_at
        FROM shipments`
	args := []any{}
	if status != nil {
		query += ` WHERE status=$1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []*domain.Shipment
	for rows.Next() {
		var shipment domain.Shipment
		if err := rows.Scan(
			&shipment.ID,
			&shipment.Reference,
			&shipment.Origin,
			&shipment.Destination,
			&shipment.WeightKG,
			&shipment.Status,
			&shipment.CreatedBy,
			&shipment.CreatedAt,
			&shipment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		shipments = append(shipments, &shipment)
	}
	return shipments, rows.Err()
}
