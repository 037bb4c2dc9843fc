package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/events"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/pricing"
	"rentacar-backend/internal/repository"
)

// ReservationSettings are the deployment-level business rules
type ReservationSettings struct {
	Location         *time.Location
	AutoCancelWindow time.Duration
}

type reservationService struct {
	lifecycle
	alertRepo    repository.AlertRepository
	customers    CustomerService
	availability AvailabilityService
	settings     ReservationSettings
}

func NewReservationService(
	tx repository.Transactor,
	reservationRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
	customers CustomerService,
	availability AvailabilityService,
	publisher events.Publisher,
	settings ReservationSettings,
) ReservationService {
	return &reservationService{
		lifecycle: lifecycle{
			tx:              tx,
			reservationRepo: reservationRepo,
			vehicleRepo:     vehicleRepo,
			auditRepo:       auditRepo,
			publisher:       publisher,
			now:             time.Now,
		},
		alertRepo:    alertRepo,
		customers:    customers,
		availability: availability,
		settings:     settings,
	}
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", domain.ErrValidation)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: end must be after start", domain.ErrValidation)
	}
	return nil
}

// billablePrice prices [start, end) and rejects rentals shorter than one billable day
func billablePrice(dailyRate int64, start, end time.Time, loc *time.Location, discount pricing.Discount) (pricing.Breakdown, error) {
	b, err := pricing.ComputeForRange(dailyRate, start, end, loc, discount)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	if b.Days < 1 {
		return pricing.Breakdown{}, fmt.Errorf("%w: a rental must cover at least one billable day", domain.ErrValidation)
	}
	return b, nil
}

func (s *reservationService) Quote(ctx context.Context, in QuoteInput) (*pricing.Breakdown, error) {
	logger.EnterMethod("reservationService.Quote", "vehicleID", in.VehicleID)

	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		logger.ExitMethodWithError("reservationService.Quote", err)
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, in.VehicleID)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Quote", err)
		return nil, err
	}
	b, err := billablePrice(vehicle.DailyRate, in.StartAt, in.EndAt, s.settings.Location, in.Discount)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Quote", err)
		return nil, err
	}

	logger.ExitMethod("reservationService.Quote", "days", b.Days, "netTotal", b.NetTotal)
	return &b, nil
}

func (s *reservationService) Create(ctx context.Context, actor string, in CreateReservationInput) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.Create", "actor", actor, "vehicleID", in.VehicleID)

	rv, err := s.create(ctx, actor, in)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Create", err)
		return nil, err
	}

	s.record(ctx, actor, rv, events.EventCreate, "")
	logger.ExitMethod("reservationService.Create", "reservationID", rv.ID)
	return rv, nil
}

func (s *reservationService) create(ctx context.Context, actor string, in CreateReservationInput) (*domain.Reservation, error) {
	if in.VehicleID <= 0 {
		return nil, fmt.Errorf("%w: vehicle id is required", domain.ErrValidation)
	}
	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	if err := in.Discount.Validate(); err != nil {
		return nil, err
	}

	// The intake upsert and the insert commit together, so a rejected
	// reservation leaves the customer record as it was.
	var rv *domain.Reservation
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		customer, err := s.resolveCustomer(txCtx, in.CustomerID, in.Customer)
		if err != nil {
			return err
		}
		// The alert goes through ctx, not txCtx, so it survives the rollback
		if err := guardBlocked(ctx, s.alertRepo, actor, customer, in.VehicleID); err != nil {
			return err
		}

		vehicle, err := s.vehicleRepo.GetByID(txCtx, in.VehicleID)
		if err != nil {
			return err
		}

		free, err := s.availability.IsAvailable(txCtx, vehicle.ID, in.StartAt, in.EndAt, nil)
		if err != nil {
			return err
		}
		if !free {
			return fmt.Errorf("%w: vehicle %s is booked or in maintenance for the requested dates", domain.ErrUnavailable, vehicle.Plate)
		}

		price, err := billablePrice(vehicle.DailyRate, in.StartAt, in.EndAt, s.settings.Location, in.Discount)
		if err != nil {
			return err
		}

		now := s.now()
		autoCancelAt := now.Add(s.settings.AutoCancelWindow)
		rv = &domain.Reservation{
			VehicleID:     vehicle.ID,
			CustomerID:    customer.ID,
			CustomerName:  customer.FullName(),
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
			StartAt:       in.StartAt,
			EndAt:         in.EndAt,
			Days:          price.Days,
			DailyRate:     price.DailyRate,
			Subtotal:      price.Subtotal,
			Tax:           price.Tax,
			GrossTotal:    price.GrossTotal,
			DiscountKind:  string(price.Kind),
			DiscountValue: price.Value,
			Discount:      price.Discount,
			NetTotal:      price.NetTotal,
			Status:        domain.ReservationStatusPendingNoPayment,
			PaymentStatus: domain.PaymentStatusUnpaid,
			AutoCancelAt:  &autoCancelAt,
			RefundStatus:  domain.RefundStatusNone,
			CreatedBy:     actor,
		}
		return s.reservationRepo.Create(txCtx, rv)
	})
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *reservationService) resolveCustomer(ctx context.Context, customerID int64, intake *domain.CustomerIntake) (*domain.Customer, error) {
	switch {
	case intake != nil:
		return s.customers.Resolve(ctx, *intake)
	case customerID > 0:
		return s.customers.GetByID(ctx, customerID)
	default:
		return nil, fmt.Errorf("%w: customer id or customer details are required", domain.ErrValidation)
	}
}

// guardBlocked rejects blocklisted customers and leaves a high-priority alert
// for staff. It runs before anything rental-related is written.
func guardBlocked(ctx context.Context, alertRepo repository.AlertRepository, actor string, c *domain.Customer, vehicleID int64) error {
	if !c.IsBlocked() {
		return nil
	}
	alert := &domain.SecurityAlert{
		Kind:       domain.AlertKindBlockedCustomer,
		Priority:   domain.AlertPriorityHigh,
		Actor:      actor,
		CustomerID: c.ID,
		VehicleID:  vehicleID,
		Message:    fmt.Sprintf("Blocked customer %s (%s) attempted to rent vehicle %d", c.FullName(), c.DocumentNumber, vehicleID),
	}
	if err := alertRepo.Create(ctx, alert); err != nil {
		logger.ErrorContext(ctx, "Failed to record security alert", "customer_id", c.ID, "error", err)
	}
	logger.WarnContext(ctx, "Blocked customer intercepted", "customer_id", c.ID, "vehicle_id", vehicleID, "actor", actor)
	return fmt.Errorf("%w: customer %s is blocklisted", domain.ErrSecurityViolation, c.DocumentNumber)
}

func (s *reservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *reservationService) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.reservationRepo.List(ctx, filter)
}

func (s *reservationService) MarkPaid(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.MarkPaid", "actor", actor, "reservationID", id)

	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.MarkPaid", err)
		return nil, err
	}

	paid := domain.PaymentStatusPaid
	paidAt := s.now()
	err = s.transition(ctx, rv, transitionRequest{
		actor: actor,
		event: domain.EventMarkPaid,
		patch: domain.ReservationPatch{
			PaymentStatus:   &paid,
			PaymentDate:     &paidAt,
			ClearAutoCancel: true,
		},
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.MarkPaid", err)
		return nil, err
	}

	logger.ExitMethod("reservationService.MarkPaid", "reservationID", id)
	return rv, nil
}

func (s *reservationService) Confirm(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.Confirm", "actor", actor, "reservationID", id)

	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Confirm", err)
		return nil, err
	}
	if err := s.transition(ctx, rv, transitionRequest{actor: actor, event: domain.EventConfirm}); err != nil {
		logger.ExitMethodWithError("reservationService.Confirm", err)
		return nil, err
	}

	logger.ExitMethod("reservationService.Confirm", "reservationID", id)
	return rv, nil
}

func (s *reservationService) Cancel(ctx context.Context, actor string, id int64, reason string, withRefund bool) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.Cancel", "actor", actor, "reservationID", id, "withRefund", withRefund)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		err := fmt.Errorf("%w: a cancellation reason is required", domain.ErrValidation)
		logger.ExitMethodWithError("reservationService.Cancel", err)
		return nil, err
	}

	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Cancel", err)
		return nil, err
	}

	cancelledAt := s.now()
	refund := domain.RefundStatusNone
	if withRefund {
		refund = domain.RefundStatusPending
	}
	err = s.transition(ctx, rv, transitionRequest{
		actor: actor,
		event: domain.EventCancel,
		patch: domain.ReservationPatch{
			CancelledAt:        &cancelledAt,
			CancelledBy:        &actor,
			CancellationReason: &reason,
			RefundStatus:       &refund,
		},
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.Cancel", err)
		return nil, err
	}

	logger.ExitMethod("reservationService.Cancel", "reservationID", id)
	return rv, nil
}

func (s *reservationService) Complete(ctx context.Context, actor string, id int64, returnOdometer *int64) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.Complete", "actor", actor, "reservationID", id)

	if returnOdometer != nil && *returnOdometer < 0 {
		err := fmt.Errorf("%w: return odometer must not be negative", domain.ErrValidation)
		logger.ExitMethodWithError("reservationService.Complete", err)
		return nil, err
	}

	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Complete", err)
		return nil, err
	}

	completedAt := s.now()
	req := transitionRequest{
		actor: actor,
		event: domain.EventComplete,
		patch: domain.ReservationPatch{CompletedAt: &completedAt},
	}
	if returnOdometer != nil {
		req.within = func(ctx context.Context, rv *domain.Reservation) error {
			return s.vehicleRepo.UpdateOdometer(ctx, rv.VehicleID, *returnOdometer)
		}
	}
	if err := s.transition(ctx, rv, req); err != nil {
		logger.ExitMethodWithError("reservationService.Complete", err)
		return nil, err
	}

	logger.ExitMethod("reservationService.Complete", "reservationID", id)
	return rv, nil
}

// Expire moves an unpaid reservation past its deadline to expired. The
// vehicle was never held, so nothing else is written.
func (s *reservationService) Expire(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.Expire", "actor", actor, "reservationID", id)

	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.Expire", err)
		return nil, err
	}
	if rv.PaymentStatus == domain.PaymentStatusPaid {
		err := fmt.Errorf("%w: reservation %d has been paid", domain.ErrConflict, id)
		logger.ExitMethodWithError("reservationService.Expire", err)
		return nil, err
	}
	if rv.AutoCancelAt == nil || rv.AutoCancelAt.After(s.now()) {
		err := fmt.Errorf("%w: reservation %d has not reached its payment deadline", domain.ErrConflict, id)
		logger.ExitMethodWithError("reservationService.Expire", err)
		return nil, err
	}

	if err := s.transition(ctx, rv, transitionRequest{actor: actor, event: domain.EventExpire}); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			logger.Debug("Reservation changed before expiry", "reservationID", id, "error", err)
		}
		logger.ExitMethodWithError("reservationService.Expire", err)
		return nil, err
	}

	logger.ExitMethod("reservationService.Expire", "reservationID", id)
	return rv, nil
}
