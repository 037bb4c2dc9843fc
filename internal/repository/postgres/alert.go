package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type alertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, a *domain.SecurityAlert) error {
	logger.DatabaseCall("INSERT", "security_alerts", "kind", a.Kind, "customer_id", a.CustomerID)
	now := time.Now()
	query := `INSERT INTO security_alerts (kind, priority, actor, customer_id, vehicle_id, message, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, a.Kind, a.Priority, a.Actor, a.CustomerID, a.VehicleID, a.Message, now).Scan(&a.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return mapError(err)
	}
	a.CreatedAt = now
	return nil
}
