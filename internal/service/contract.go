package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/events"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
	"rentacar-backend/internal/storage"
)

const evidenceUploadExpiry = 15 * time.Minute

// ContractSettings configures document links
type ContractSettings struct {
	Location  *time.Location
	URLExpiry time.Duration
}

type contractService struct {
	lifecycle
	contractRepo repository.ContractRepository
	customerRepo repository.CustomerRepository
	alertRepo    repository.AlertRepository
	customers    CustomerService
	availability AvailabilityService
	store        storage.DocumentStore
	emailSvc     EmailService
	settings     ContractSettings
	newNumber    func() string
}

func NewContractService(
	tx repository.Transactor,
	reservationRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	contractRepo repository.ContractRepository,
	customerRepo repository.CustomerRepository,
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
	customers CustomerService,
	availability AvailabilityService,
	store storage.DocumentStore,
	emailSvc EmailService,
	publisher events.Publisher,
	settings ContractSettings,
) ContractService {
	return &contractService{
		lifecycle: lifecycle{
			tx:              tx,
			reservationRepo: reservationRepo,
			vehicleRepo:     vehicleRepo,
			auditRepo:       auditRepo,
			publisher:       publisher,
			now:             time.Now,
		},
		contractRepo: contractRepo,
		customerRepo: customerRepo,
		alertRepo:    alertRepo,
		customers:    customers,
		availability: availability,
		store:        store,
		emailSvc:     emailSvc,
		settings:     settings,
		newNumber:    newContractNumber,
	}
}

func newContractNumber() string {
	return "CT-" + strings.ToUpper(uuid.New().String()[:8])
}

// IssueContract signs a paid reservation. The reservation moves to
// contract_generated and the contract row is inserted in one transaction.
func (s *contractService) IssueContract(ctx context.Context, actor string, reservationID int64, kind domain.ContractKind, evidence domain.ContractEvidence) (*domain.Contract, error) {
	logger.EnterMethod("contractService.IssueContract", "actor", actor, "reservationID", reservationID, "kind", kind)

	if err := s.validateEvidence(ctx, kind, evidence); err != nil {
		logger.ExitMethodWithError("contractService.IssueContract", err)
		return nil, err
	}

	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		logger.ExitMethodWithError("contractService.IssueContract", err)
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, rv.CustomerID)
	if err != nil {
		logger.ExitMethodWithError("contractService.IssueContract", err)
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, rv.VehicleID)
	if err != nil {
		logger.ExitMethodWithError("contractService.IssueContract", err)
		return nil, err
	}

	c := &domain.Contract{
		Number:        s.newNumber(),
		ReservationID: &rv.ID,
		CustomerID:    customer.ID,
		VehicleID:     vehicle.ID,
		Kind:          kind,
		Status:        domain.ContractStatusActive,
		Locked:        kind == domain.ContractKindFinal,
		Snapshot:      reservationSnapshot(rv, customer, vehicle),
		Evidence:      evidence,
		SignedBy:      actor,
		SignedAt:      s.now(),
	}

	err = s.transition(ctx, rv, transitionRequest{
		actor: actor,
		event: domain.EventIssueContract,
		within: func(ctx context.Context, _ *domain.Reservation) error {
			return s.contractRepo.Create(ctx, c)
		},
	})
	if err != nil {
		logger.ExitMethodWithError("contractService.IssueContract", err)
		return nil, err
	}

	s.recordContract(ctx, actor, "contract.issue", c.ID, "", c.Status)
	s.sendContractEmail(ctx, c)

	logger.ExitMethod("contractService.IssueContract", "contractID", c.ID, "number", c.Number)
	return c, nil
}

// IssueWalkInContract signs a rental that never went through a reservation
func (s *contractService) IssueWalkInContract(ctx context.Context, actor string, in WalkInContractInput) (*domain.Contract, error) {
	logger.EnterMethod("contractService.IssueWalkInContract", "actor", actor, "vehicleID", in.VehicleID, "kind", in.Kind)

	c, err := s.issueWalkIn(ctx, actor, in)
	if err != nil {
		logger.ExitMethodWithError("contractService.IssueWalkInContract", err)
		return nil, err
	}

	s.recordContract(ctx, actor, "contract.walk_in", c.ID, "", c.Status)
	s.sendContractEmail(ctx, c)

	logger.ExitMethod("contractService.IssueWalkInContract", "contractID", c.ID, "number", c.Number)
	return c, nil
}

func (s *contractService) issueWalkIn(ctx context.Context, actor string, in WalkInContractInput) (*domain.Contract, error) {
	if in.VehicleID <= 0 {
		return nil, fmt.Errorf("%w: vehicle id is required", domain.ErrValidation)
	}
	if err := validateInterval(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	if err := s.validateEvidence(ctx, in.Kind, in.Evidence); err != nil {
		return nil, err
	}

	// The intake upsert and the contract insert commit together. The
	// contract's rental window is checked against reservations and other
	// walk-ins by the database as well.
	var c *domain.Contract
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var customer *domain.Customer
		var err error
		switch {
		case in.Customer != nil:
			customer, err = s.customers.Resolve(txCtx, *in.Customer)
		case in.CustomerID > 0:
			customer, err = s.customers.GetByID(txCtx, in.CustomerID)
		default:
			err = fmt.Errorf("%w: customer id or customer details are required", domain.ErrValidation)
		}
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

		c = &domain.Contract{
			Number:     s.newNumber(),
			CustomerID: customer.ID,
			VehicleID:  vehicle.ID,
			Kind:       in.Kind,
			Status:     domain.ContractStatusActive,
			Locked:     in.Kind == domain.ContractKindFinal,
			Snapshot: domain.ContractSnapshot{
				CustomerName:     customer.FullName(),
				CustomerDocument: customer.DocumentNumber,
				CustomerEmail:    customer.Email,
				CustomerPhone:    customer.Phone,
				VehiclePlate:     vehicle.Plate,
				VehicleMake:      vehicle.Make,
				VehicleModel:     vehicle.Model,
				VehicleYear:      vehicle.Year,
				StartAt:          in.StartAt,
				EndAt:            in.EndAt,
				Days:             price.Days,
				DailyRate:        price.DailyRate,
				Subtotal:         price.Subtotal,
				Tax:              price.Tax,
				GrossTotal:       price.GrossTotal,
				Discount:         price.Discount,
				NetTotal:         price.NetTotal,
			},
			Evidence: in.Evidence,
			SignedBy: actor,
			SignedAt: s.now(),
		}
		return s.contractRepo.Create(txCtx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ConvertContract replaces an active preliminary contract with a new, locked
// final one. The source row is only ever flipped to converted.
func (s *contractService) ConvertContract(ctx context.Context, actor string, id int64, evidence domain.ContractEvidence) (*domain.Contract, error) {
	logger.EnterMethod("contractService.ConvertContract", "actor", actor, "contractID", id)

	src, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("contractService.ConvertContract", err)
		return nil, err
	}
	if src.Kind != domain.ContractKindPreliminary || src.Status != domain.ContractStatusActive || src.Locked {
		err := fmt.Errorf("%w: contract %s is %s/%s and cannot be converted", domain.ErrConflict, src.Number, src.Kind, src.Status)
		logger.ExitMethodWithError("contractService.ConvertContract", err)
		return nil, err
	}

	merged := mergeEvidence(src.Evidence, evidence)
	if err := s.validateEvidence(ctx, domain.ContractKindFinal, merged); err != nil {
		logger.ExitMethodWithError("contractService.ConvertContract", err)
		return nil, err
	}

	final := &domain.Contract{
		Number:        s.newNumber(),
		ReservationID: src.ReservationID,
		CustomerID:    src.CustomerID,
		VehicleID:     src.VehicleID,
		Kind:          domain.ContractKindFinal,
		Status:        domain.ContractStatusActive,
		Locked:        true,
		ConvertedFrom: &src.ID,
		Snapshot:      src.Snapshot,
		Evidence:      merged,
		SignedBy:      actor,
		SignedAt:      s.now(),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.contractRepo.MarkConverted(ctx, src.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: contract %s was converted concurrently", domain.ErrConflict, src.Number)
		}
		return s.contractRepo.Create(ctx, final)
	})
	if err != nil {
		logger.ExitMethodWithError("contractService.ConvertContract", err)
		return nil, err
	}

	s.recordContract(ctx, actor, "contract.convert", src.ID, src.Status, domain.ContractStatusConverted)
	s.recordContract(ctx, actor, "contract.issue", final.ID, "", final.Status)
	s.sendContractEmail(ctx, final)

	logger.ExitMethod("contractService.ConvertContract", "contractID", final.ID, "number", final.Number)
	return final, nil
}

func (s *contractService) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	return s.contractRepo.GetByID(ctx, id)
}

func (s *contractService) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Contract, error) {
	if _, err := s.reservationRepo.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.contractRepo.ListByReservation(ctx, reservationID)
}

// EvidenceUploadURL reserves a storage key for a signing artifact and returns
// a short-lived upload link for it
func (s *contractService) EvidenceUploadURL(ctx context.Context, kind storage.EvidenceKind, filename string) (*UploadTicket, error) {
	key, err := storage.NewEvidenceKey(kind, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	u, err := s.store.PresignedUploadURL(ctx, key, evidenceUploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign upload: %v", domain.ErrDownstream, err)
	}
	return &UploadTicket{Key: key, UploadURL: u, ExpiresAt: s.now().Add(evidenceUploadExpiry)}, nil
}

// validateEvidence requires a signature on final contracts and checks every
// referenced artifact was actually uploaded
func (s *contractService) validateEvidence(ctx context.Context, kind domain.ContractKind, ev domain.ContractEvidence) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown contract kind %q", domain.ErrValidation, kind)
	}
	if kind == domain.ContractKindFinal && ev.SignatureKey == "" {
		return fmt.Errorf("%w: a final contract requires a signature", domain.ErrValidation)
	}
	for _, key := range []string{ev.SignatureKey, ev.FingerprintKey, ev.PhotoKey, ev.DocumentKey} {
		if key == "" {
			continue
		}
		if !storage.ValidKey(key) {
			return fmt.Errorf("%w: invalid evidence key %q", domain.ErrValidation, key)
		}
		exists, _, err := s.store.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: check evidence %s: %v", domain.ErrDownstream, key, err)
		}
		if !exists {
			return fmt.Errorf("%w: evidence %s has not been uploaded", domain.ErrValidation, key)
		}
	}
	return nil
}

func mergeEvidence(base, override domain.ContractEvidence) domain.ContractEvidence {
	if override.SignatureKey != "" {
		base.SignatureKey = override.SignatureKey
	}
	if override.FingerprintKey != "" {
		base.FingerprintKey = override.FingerprintKey
	}
	if override.PhotoKey != "" {
		base.PhotoKey = override.PhotoKey
	}
	if override.DocumentKey != "" {
		base.DocumentKey = override.DocumentKey
	}
	return base
}

func reservationSnapshot(rv *domain.Reservation, c *domain.Customer, v *domain.Vehicle) domain.ContractSnapshot {
	return domain.ContractSnapshot{
		CustomerName:     c.FullName(),
		CustomerDocument: c.DocumentNumber,
		CustomerEmail:    c.Email,
		CustomerPhone:    c.Phone,
		VehiclePlate:     v.Plate,
		VehicleMake:      v.Make,
		VehicleModel:     v.Model,
		VehicleYear:      v.Year,
		StartAt:          rv.StartAt,
		EndAt:            rv.EndAt,
		Days:             rv.Days,
		DailyRate:        rv.DailyRate,
		Subtotal:         rv.Subtotal,
		Tax:              rv.Tax,
		GrossTotal:       rv.GrossTotal,
		Discount:         rv.Discount,
		NetTotal:         rv.NetTotal,
	}
}

func (s *contractService) recordContract(ctx context.Context, actor, action string, id int64, before, after domain.ContractStatus) {
	entry := &domain.AuditEntry{
		Actor:       actor,
		Action:      action,
		EntityType:  domain.AuditEntityContract,
		EntityID:    id,
		BeforeState: string(before),
		AfterState:  string(after),
		RequestID:   logger.RequestID(ctx),
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "Failed to append audit entry", "contract_id", id, "action", action, "error", err)
	}
}

// sendContractEmail is best effort: the contract is already committed
func (s *contractService) sendContractEmail(ctx context.Context, c *domain.Contract) {
	if c.Snapshot.CustomerEmail == "" {
		logger.InfoContext(ctx, "Contract email skipped, customer has no email", "contract_id", c.ID)
		return
	}

	var pdfURL string
	if c.Evidence.DocumentKey != "" {
		u, err := s.store.PresignedDownloadURL(ctx, c.Evidence.DocumentKey, s.settings.URLExpiry)
		if err != nil {
			logger.WarnContext(ctx, "Failed to presign contract document", "contract_id", c.ID, "error", err)
		} else {
			pdfURL = u
		}
	}

	msg := ContractEmail{
		ContractID:     c.ID,
		ContractNumber: c.Number,
		CustomerEmail:  c.Snapshot.CustomerEmail,
		CustomerName:   c.Snapshot.CustomerName,
		VehiclePlate:   c.Snapshot.VehiclePlate,
		PDFURL:         pdfURL,
	}
	if err := s.emailSvc.SendContractEmail(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to send contract email", "contract_id", c.ID, "error", err)
	}
}
