package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, vehicle_id, customer_id, customer_name, COALESCE(customer_email, ''), COALESCE(customer_phone, ''),
	start_at, end_at, days, daily_rate, subtotal, tax, gross_total, discount_kind, discount_value, discount, net_total,
	status, payment_status, payment_date, auto_cancel_at, cancelled_at, COALESCE(cancelled_by, ''), COALESCE(cancellation_reason, ''),
	refund_status, completed_at, created_by, created_on, updated_on`

func scanReservation(row interface{ Scan(...any) error }) (*domain.Reservation, error) {
	rv := &domain.Reservation{}
	err := row.Scan(&rv.ID, &rv.VehicleID, &rv.CustomerID, &rv.CustomerName, &rv.CustomerEmail, &rv.CustomerPhone,
		&rv.StartAt, &rv.EndAt, &rv.Days, &rv.DailyRate, &rv.Subtotal, &rv.Tax, &rv.GrossTotal, &rv.DiscountKind, &rv.DiscountValue, &rv.Discount, &rv.NetTotal,
		&rv.Status, &rv.PaymentStatus, &rv.PaymentDate, &rv.AutoCancelAt, &rv.CancelledAt, &rv.CancelledBy, &rv.CancellationReason,
		&rv.RefundStatus, &rv.CompletedAt, &rv.CreatedBy, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	logger.DatabaseResult("SELECT", int64(len(out)), nil)
	return out, nil
}

// Create inserts the reservation. The exclusion constraint on
// (vehicle_id, tstzrange(start_at, end_at)) rejects a concurrent overlapping
// insert, which surfaces as domain.ErrUnavailable.
func (r *reservationRepository) Create(ctx context.Context, rv *domain.Reservation) error {
	logger.DatabaseCall("INSERT", "reservations", "vehicle_id", rv.VehicleID, "customer_id", rv.CustomerID)
	now := time.Now()
	query := `INSERT INTO reservations (vehicle_id, customer_id, customer_name, customer_email, customer_phone,
	              start_at, end_at, days, daily_rate, subtotal, tax, gross_total, discount_kind, discount_value, discount, net_total,
	              status, payment_status, auto_cancel_at, refund_status, created_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23) RETURNING id`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		rv.VehicleID, rv.CustomerID, rv.CustomerName, nullString(rv.CustomerEmail), nullString(rv.CustomerPhone),
		rv.StartAt, rv.EndAt, rv.Days, rv.DailyRate, rv.Subtotal, rv.Tax, rv.GrossTotal, rv.DiscountKind, rv.DiscountValue, rv.Discount, rv.NetTotal,
		rv.Status, rv.PaymentStatus, rv.AutoCancelAt, rv.RefundStatus, rv.CreatedBy, now, now,
	).Scan(&rv.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return mapError(err)
	}
	rv.CreatedAt, rv.UpdatedAt = now, now
	logger.DatabaseResult("INSERT", 1, nil, "id", rv.ID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	logger.DatabaseCall("SELECT", "reservations", "id", id)
	rv, err := scanReservation(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	return rv, nil
}

func (r *reservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error) {
	logger.DatabaseCall("SELECT", "reservations", "filter", filter)
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.VehicleID != 0 {
		args = append(args, filter.VehicleID)
		where = append(where, fmt.Sprintf("vehicle_id = $%d", len(args)))
	}
	if filter.CustomerID != 0 {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var count int32
	if err := conn(ctx, r.db).QueryRowContext(ctx, "SELECT count(*) FROM reservations"+cond, args...).Scan(&count); err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations` + cond +
		fmt.Sprintf(" ORDER BY start_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	out, err := r.queryReservations(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *reservationRepository) Transition(ctx context.Context, id int64, t domain.Transition, patch domain.ReservationPatch) (int64, error) {
	logger.DatabaseCall("UPDATE", "reservations", "id", id, "event", t.Event, "to", t.To)

	sets := []string{"status = $1", "updated_on = $2"}
	args := []any{t.To, time.Now()}
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.PaymentStatus != nil {
		set("payment_status", *patch.PaymentStatus)
	}
	if patch.PaymentDate != nil {
		set("payment_date", *patch.PaymentDate)
	}
	if patch.ClearAutoCancel {
		sets = append(sets, "auto_cancel_at = NULL")
	}
	if patch.CancelledAt != nil {
		set("cancelled_at", *patch.CancelledAt)
	}
	if patch.CancelledBy != nil {
		set("cancelled_by", *patch.CancelledBy)
	}
	if patch.CancellationReason != nil {
		set("cancellation_reason", *patch.CancellationReason)
	}
	if patch.RefundStatus != nil {
		set("refund_status", *patch.RefundStatus)
	}
	if patch.CompletedAt != nil {
		set("completed_at", *patch.CompletedAt)
	}

	args = append(args, id, pq.Array(t.FromStrings()))
	query := fmt.Sprintf("UPDATE reservations SET %s WHERE id = $%d AND status = ANY($%d)",
		strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
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

func (r *reservationRepository) CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) (bool, error) {
	logger.DatabaseCall("RPC", "check_reservation_availability", "vehicle_id", vehicleID, "start", start, "end", end)
	var exclude sql.NullInt64
	if excludeID != nil {
		exclude = sql.NullInt64{Int64: *excludeID, Valid: true}
	}
	var available bool
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT check_reservation_availability($1, $2, $3, $4)`, vehicleID, start, end, exclude).Scan(&available)
	if err != nil {
		logger.DatabaseResult("RPC", 0, err)
		return false, mapError(err)
	}
	return available, nil
}

// ListActiveByVehicle returns non-terminal reservations whose interval overlaps [from, to)
func (r *reservationRepository) ListActiveByVehicle(ctx context.Context, vehicleID int64, from, to time.Time) ([]domain.Reservation, error) {
	logger.DatabaseCall("SELECT", "reservations", "vehicle_id", vehicleID, "from", from, "to", to)
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE vehicle_id = $1 AND status NOT IN ('cancelled', 'expired') AND start_at < $3 AND end_at > $2
	          ORDER BY start_at`
	return r.queryReservations(ctx, query, vehicleID, from, to)
}

func (r *reservationRepository) ListDueForExpiry(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	logger.DatabaseCall("SELECT", "reservations", "due_for_expiry_at", now)
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = $1 AND auto_cancel_at IS NOT NULL AND auto_cancel_at <= $2
	          ORDER BY auto_cancel_at`
	return r.queryReservations(ctx, query, domain.ReservationStatusPendingNoPayment, now)
}

func (r *reservationRepository) ListDueForCompletion(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	logger.DatabaseCall("SELECT", "reservations", "due_for_completion_at", now)
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = $1 AND end_at <= $2
	          ORDER BY end_at`
	return r.queryReservations(ctx, query, domain.ReservationStatusConfirmed, now)
}
