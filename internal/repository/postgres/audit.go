package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

// Append writes one immutable audit row
func (r *auditRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	logger.DatabaseCall("INSERT", "audit_log", "entity", e.EntityType, "entity_id", e.EntityID, "action", e.Action)
	now := time.Now()
	query := `INSERT INTO audit_log (actor, action, entity_type, entity_id, before_state, after_state, request_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, e.Actor, e.Action, e.EntityType, e.EntityID,
		nullString(e.BeforeState), nullString(e.AfterState), nullString(e.RequestID), now).Scan(&e.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return mapError(err)
	}
	e.CreatedAt = now
	return nil
}
