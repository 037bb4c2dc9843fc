package service

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type availabilityService struct {
	reservationRepo repository.ReservationRepository
	maintenanceRepo repository.MaintenanceRepository
	loc             *time.Location
}

func NewAvailabilityService(
	reservationRepo repository.ReservationRepository,
	maintenanceRepo repository.MaintenanceRepository,
	loc *time.Location,
) AvailabilityService {
	return &availabilityService{
		reservationRepo: reservationRepo,
		maintenanceRepo: maintenanceRepo,
		loc:             loc,
	}
}

func (s *availabilityService) IsAvailable(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) (bool, error) {
	logger.EnterMethod("availabilityService.IsAvailable", "vehicleID", vehicleID, "start", start, "end", end)

	if end.Before(start) {
		err := fmt.Errorf("%w: end %s is before start %s", domain.ErrValidation, end.Format(time.RFC3339), start.Format(time.RFC3339))
		logger.ExitMethodWithError("availabilityService.IsAvailable", err)
		return false, err
	}

	free, err := s.reservationRepo.CheckAvailability(ctx, vehicleID, start, end, excludeID)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.IsAvailable", err)
		return false, fmt.Errorf("%w: reservation check: %v", domain.ErrAvailabilityUnknown, err)
	}
	if !free {
		logger.ExitMethod("availabilityService.IsAvailable", "available", false, "reason", "reservation overlap")
		return false, nil
	}

	first, last := s.occupiedDays(start, end)
	blocked, err := s.maintenanceRepo.HasOverlap(ctx, vehicleID, first, last)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.IsAvailable", err)
		return false, fmt.Errorf("%w: maintenance check: %v", domain.ErrAvailabilityUnknown, err)
	}
	if blocked {
		logger.ExitMethod("availabilityService.IsAvailable", "available", false, "reason", "maintenance")
		return false, nil
	}

	logger.ExitMethod("availabilityService.IsAvailable", "available", true)
	return true, nil
}

// occupiedDays returns the civil days a rental keeps the vehicle out. The
// return day is free for maintenance, matching billing; a same-day rental
// still occupies its start day.
func (s *availabilityService) occupiedDays(start, end time.Time) (civil.Date, civil.Date) {
	first := civil.DateOf(start.In(s.loc))
	last := civil.DateOf(end.In(s.loc)).AddDays(-1)
	if last.Before(first) {
		last = first
	}
	return first, last
}

// Conflicts lists the active reservations overlapping [start, end)
func (s *availabilityService) Conflicts(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) ([]domain.Reservation, error) {
	rows, err := s.reservationRepo.ListActiveByVehicle(ctx, vehicleID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAvailabilityUnknown, err)
	}
	var out []domain.Reservation
	for _, r := range rows {
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if r.Status.IsActive() && domain.Overlaps(r.StartAt, r.EndAt, start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}
