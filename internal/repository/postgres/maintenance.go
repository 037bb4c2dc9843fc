package postgres

import (
	"context"
	"database/sql"

	"cloud.google.com/go/civil"

	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type maintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) HasOverlap(ctx context.Context, vehicleID int64, start, end civil.Date) (bool, error) {
	logger.DatabaseCall("SELECT", "maintenance_records", "vehicle_id", vehicleID, "start", start, "end", end)
	query := `SELECT EXISTS (
	              SELECT 1 FROM maintenance_records
	              WHERE vehicle_id = $1 AND start_date <= $3::date AND end_date >= $2::date
	          )`
	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, vehicleID, start.String(), end.String()).Scan(&exists); err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return false, mapError(err)
	}
	return exists, nil
}
