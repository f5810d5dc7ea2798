package vehicles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetwatch/fleetwatch/internal/shared"
)

// Repository defines persistence operations for vehicles.
type Repository interface {
	Get(ctx context.Context, id int64) (*Vehicle, error)
	List(ctx context.Context) ([]Vehicle, error)
	Create(ctx context.Context, v Vehicle) (*Vehicle, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Vehicle, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const vehicleColumns = `id, name, status, fuel_level, odometer, latitude, longitude, speed, updated_at`

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.Name, &v.Status, &v.FuelLevel, &v.Odometer, &v.Latitude, &v.Longitude, &v.Speed, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Get fetches a vehicle by primary key.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Vehicle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicle(row)
}

// List returns all vehicles, most recently updated first.
func (r *PGRepository) List(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Status, &v.FuelLevel, &v.Odometer, &v.Latitude, &v.Longitude, &v.Speed, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts a vehicle and returns the stored record.
func (r *PGRepository) Create(ctx context.Context, v Vehicle) (*Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (name, status, fuel_level, odometer, latitude, longitude, speed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+vehicleColumns,
		v.Name, v.Status, v.FuelLevel, v.Odometer, v.Latitude, v.Longitude, v.Speed)
	return scanVehicle(row)
}

// Update applies a partial column update and returns the stored record.
// Column names come from the service layer, never from request input.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Vehicle, error) {
	query := "UPDATE vehicles SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"name", "status", "fuel_level", "odometer", "latitude", "longitude", "speed"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", argPos, vehicleColumns)
	args = append(args, id)

	return scanVehicle(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes a vehicle by primary key.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
