package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) repository.ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, number, reservation_id, customer_id, vehicle_id, kind, status, locked, converted_from, snapshot, evidence, signed_by, signed_at, created_on`

func scanContract(row interface{ Scan(...any) error }) (*domain.Contract, error) {
	c := &domain.Contract{}
	var snapshot, evidence []byte
	err := row.Scan(&c.ID, &c.Number, &c.ReservationID, &c.CustomerID, &c.VehicleID, &c.Kind, &c.Status, &c.Locked,
		&c.ConvertedFrom, &snapshot, &evidence, &c.SignedBy, &c.SignedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &c.Snapshot); err != nil {
			return nil, fmt.Errorf("decode contract snapshot: %w", err)
		}
	}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &c.Evidence); err != nil {
			return nil, fmt.Errorf("decode contract evidence: %w", err)
		}
	}
	return c, nil
}

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	logger.DatabaseCall("INSERT", "contracts", "number", c.Number, "kind", c.Kind)
	snapshot, err := json.Marshal(c.Snapshot)
	if err != nil {
		return fmt.Errorf("encode contract snapshot: %w", err)
	}
	evidence, err := json.Marshal(c.Evidence)
	if err != nil {
		return fmt.Errorf("encode contract evidence: %w", err)
	}

	now := time.Now()
	// rental_start/rental_end put walk-in contracts on the vehicle calendar
	query := `INSERT INTO contracts (number, reservation_id, customer_id, vehicle_id, kind, status, locked, converted_from, rental_start, rental_end, snapshot, evidence, signed_by, signed_at, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	err = conn(ctx, r.db).QueryRowContext(ctx, query, c.Number, c.ReservationID, c.CustomerID, c.VehicleID, c.Kind, c.Status, c.Locked,
		c.ConvertedFrom, c.Snapshot.StartAt, c.Snapshot.EndAt, snapshot, evidence, c.SignedBy, c.SignedAt, now).Scan(&c.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return mapError(err)
	}
	c.CreatedAt = now
	logger.DatabaseResult("INSERT", 1, nil, "id", c.ID)
	return nil
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	logger.DatabaseCall("SELECT", "contracts", "id", id)
	c, err := scanContract(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	return c, nil
}

func (r *contractRepository) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Contract, error) {
	logger.DatabaseCall("SELECT", "contracts", "reservation_id", reservationID)
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE reservation_id = $1 ORDER BY created_on, id`, reservationID)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	logger.DatabaseResult("SELECT", int64(len(out)), nil)
	return out, nil
}

func (r *contractRepository) MarkConverted(ctx context.Context, id int64) (int64, error) {
	logger.DatabaseCall("UPDATE", "contracts", "id", id, "status", domain.ContractStatusConverted)
	query := `UPDATE contracts SET status = $1 WHERE id = $2 AND kind = $3 AND status = $4 AND NOT locked`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, domain.ContractStatusConverted, id, domain.ContractKindPreliminary, domain.ContractStatusActive)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err)
	}
	logger.DatabaseResult("UPDATE", n, nil)
	return n, nil
}
