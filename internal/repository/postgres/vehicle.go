package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	logger.DatabaseCall("SELECT", "vehicles", "id", id)
	v := &domain.Vehicle{}
	query := `SELECT id, plate, make, model, year, daily_rate, odometer, status, created_on, updated_on FROM vehicles WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.DailyRate, &v.Odometer, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	return v, nil
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id int64, status domain.VehicleStatus) error {
	logger.DatabaseCall("UPDATE", "vehicles", "id", id, "status", status)
	query := `UPDATE vehicles SET status = $1, updated_on = $2 WHERE id = $3`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return mapError(err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateOdometer never moves the reading backwards
func (r *vehicleRepository) UpdateOdometer(ctx context.Context, id int64, odometer int64) error {
	logger.DatabaseCall("UPDATE", "vehicles", "id", id, "odometer", odometer)
	query := `UPDATE vehicles SET odometer = GREATEST(odometer, $1), updated_on = $2 WHERE id = $3`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, odometer, time.Now(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return mapError(err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
