package repository

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"rentacar-backend/internal/domain"
)

// Transactor runs fn inside one database transaction. Repositories called with
// the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	UpdateStatus(ctx context.Context, id int64, status domain.VehicleStatus) error
	UpdateOdometer(ctx context.Context, id int64, odometer int64) error
}

type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByDocument(ctx context.Context, documentNumber string) (*domain.Customer, error)
	UpdateContact(ctx context.Context, c *domain.Customer) error
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error)

	// Transition moves a reservation to t.To only if its current status is one
	// of t.From. It returns the number of rows updated; zero means the guard failed.
	Transition(ctx context.Context, id int64, t domain.Transition, patch domain.ReservationPatch) (int64, error)

	// CheckAvailability calls the server-side overlap check
	CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) (bool, error)
	ListActiveByVehicle(ctx context.Context, vehicleID int64, from, to time.Time) ([]domain.Reservation, error)

	ListDueForExpiry(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	ListDueForCompletion(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

type ContractRepository interface {
	Create(ctx context.Context, c *domain.Contract) error
	GetByID(ctx context.Context, id int64) (*domain.Contract, error)
	ListByReservation(ctx context.Context, reservationID int64) ([]domain.Contract, error)
	// MarkConverted flips an active preliminary contract to converted; zero rows means it was not eligible
	MarkConverted(ctx context.Context, id int64) (int64, error)
}

type MaintenanceRepository interface {
	// HasOverlap reports whether any maintenance record covers a day in [start, end]
	HasOverlap(ctx context.Context, vehicleID int64, start, end civil.Date) (bool, error)
}

type AlertRepository interface {
	Create(ctx context.Context, a *domain.SecurityAlert) error
}

type AuditRepository interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
}
