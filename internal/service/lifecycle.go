package service

import (
	"context"
	"fmt"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/events"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

// lifecycle is the single place reservation state changes are written. Every
// caller (HTTP handlers, the contract bridge, scheduled jobs) goes through it.
type lifecycle struct {
	tx              repository.Transactor
	reservationRepo repository.ReservationRepository
	vehicleRepo     repository.VehicleRepository
	auditRepo       repository.AuditRepository
	publisher       events.Publisher
	now             func() time.Time
}

type transitionRequest struct {
	actor string
	event domain.ReservationEvent
	patch domain.ReservationPatch
	// within runs in the same transaction, after the guarded update
	within func(ctx context.Context, rv *domain.Reservation) error
}

// transition applies req to rv. The reservation update, the vehicle status
// write and within commit or roll back together. On success rv reflects the
// new state.
func (l *lifecycle) transition(ctx context.Context, rv *domain.Reservation, req transitionRequest) error {
	t, err := domain.TransitionFor(req.event)
	if err != nil {
		return err
	}
	from := rv.Status
	if _, err := t.Apply(from); err != nil {
		return err
	}

	// Guard on the state we read, not every allowed source state, so a
	// concurrent change in between (paid while the sweeper runs) is a conflict.
	guard := t
	guard.From = []domain.ReservationStatus{from}

	at := l.now()
	err = l.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := l.reservationRepo.Transition(ctx, rv.ID, guard, req.patch)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: reservation %d is no longer %s", domain.ErrConflict, rv.ID, from)
		}

		switch t.Vehicle {
		case domain.VehicleEffectHold:
			if err := l.holdVehicle(ctx, rv.VehicleID); err != nil {
				return err
			}
		case domain.VehicleEffectRelease:
			if err := l.releaseVehicle(ctx, rv.VehicleID); err != nil {
				return err
			}
		}

		if req.within != nil {
			return req.within(ctx, rv)
		}
		return nil
	})
	if err != nil {
		return err
	}

	rv.Apply(t, req.patch, at)
	l.record(ctx, req.actor, rv, req.event, from)
	return nil
}

func (l *lifecycle) holdVehicle(ctx context.Context, vehicleID int64) error {
	v, err := l.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v.Status == domain.VehicleStatusMaintenance {
		return fmt.Errorf("%w: vehicle %s is in maintenance", domain.ErrUnavailable, v.Plate)
	}
	return l.vehicleRepo.UpdateStatus(ctx, vehicleID, domain.VehicleStatusRented)
}

// releaseVehicle flips a rented vehicle back to available unless another
// confirmed reservation still holds it. Maintenance is left alone.
func (l *lifecycle) releaseVehicle(ctx context.Context, vehicleID int64) error {
	v, err := l.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v.Status != domain.VehicleStatusRented {
		return nil
	}
	_, holding, err := l.reservationRepo.List(ctx, domain.ReservationFilter{
		Status:    domain.ReservationStatusConfirmed,
		VehicleID: vehicleID,
		PageSize:  1,
	})
	if err != nil {
		return err
	}
	if holding > 0 {
		return nil
	}
	return l.vehicleRepo.UpdateStatus(ctx, vehicleID, domain.VehicleStatusAvailable)
}

// record appends the audit entry and publishes the change event. Both run
// after commit; failures are logged and never undo the transition.
func (l *lifecycle) record(ctx context.Context, actor string, rv *domain.Reservation, event domain.ReservationEvent, from domain.ReservationStatus) {
	entry := &domain.AuditEntry{
		Actor:       actor,
		Action:      "reservation." + string(event),
		EntityType:  domain.AuditEntityReservation,
		EntityID:    rv.ID,
		BeforeState: string(from),
		AfterState:  string(rv.Status),
		RequestID:   logger.RequestID(ctx),
	}
	if err := l.auditRepo.Append(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "Failed to append audit entry", "reservation_id", rv.ID, "action", entry.Action, "error", err)
	}

	ev := events.ReservationChanged{
		ReservationID: rv.ID,
		VehicleID:     rv.VehicleID,
		Event:         event,
		From:          from,
		To:            rv.Status,
		Actor:         actor,
		RequestID:     logger.RequestID(ctx),
		OccurredAt:    l.now(),
	}
	if err := l.publisher.Publish(ctx, ev); err != nil {
		logger.WarnContext(ctx, "Failed to publish reservation change", "reservation_id", rv.ID, "event", event, "error", err)
	}
}
