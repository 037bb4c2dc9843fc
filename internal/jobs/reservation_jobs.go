package jobs

import (
	"context"
	"errors"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
)

// ExpireUnpaidReservations moves unpaid reservations past their payment
// deadline to expired
func (jr *JobRunner) ExpireUnpaidReservations() {
	jr.runWithRecovery("ExpireUnpaidReservations", func() {
		jr.expireUnpaid(jobContext(JobExpireUnpaidReservations))
	})
}

// expireUnpaid returns how many reservations were expired and how many failed.
// A reservation paid between the listing and the update is skipped, not failed.
func (jr *JobRunner) expireUnpaid(ctx context.Context) (expired, failed int) {
	due, err := jr.reservationRepo.ListDueForExpiry(ctx, jr.now())
	if err != nil {
		logger.Error("Failed to list reservations due for expiry", "error", err)
		return 0, 0
	}

	for _, rv := range due {
		_, err := jr.services.Reservation.Expire(ctx, jr.systemActor(), rv.ID)
		switch {
		case err == nil:
			expired++
			logger.Debug("Expired unpaid reservation", "reservation_id", rv.ID, "vehicle_id", rv.VehicleID)
		case errors.Is(err, domain.ErrConflict):
			logger.Debug("Skipped reservation that changed before expiry", "reservation_id", rv.ID, "error", err)
		default:
			failed++
			logger.Error("Failed to expire reservation", "reservation_id", rv.ID, "error", err)
		}
	}

	logger.Info("Expired unpaid reservations", "due", len(due), "expired", expired, "failed", failed)
	return expired, failed
}

// CompleteFinishedReservations completes confirmed reservations whose end has passed
func (jr *JobRunner) CompleteFinishedReservations() {
	jr.runWithRecovery("CompleteFinishedReservations", func() {
		jr.completeFinished(jobContext(JobCompleteFinishedReservations))
	})
}

func (jr *JobRunner) completeFinished(ctx context.Context) (completed, failed int) {
	due, err := jr.reservationRepo.ListDueForCompletion(ctx, jr.now())
	if err != nil {
		logger.Error("Failed to list reservations due for completion", "error", err)
		return 0, 0
	}

	for _, rv := range due {
		_, err := jr.services.Reservation.Complete(ctx, jr.systemActor(), rv.ID, nil)
		switch {
		case err == nil:
			completed++
		case errors.Is(err, domain.ErrConflict):
			logger.Debug("Skipped reservation that changed before completion", "reservation_id", rv.ID, "error", err)
		default:
			failed++
			logger.Error("Failed to complete reservation", "reservation_id", rv.ID, "error", err)
		}
	}

	logger.Info("Completed finished reservations", "due", len(due), "completed", completed, "failed", failed)
	return completed, failed
}
