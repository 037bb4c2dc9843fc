package service

import (
	"context"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/pricing"
	"rentacar-backend/internal/storage"
)

type AvailabilityService interface {
	// IsAvailable fails closed: any data-source error is returned as
	// domain.ErrAvailabilityUnknown and must block the caller.
	IsAvailable(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) (bool, error)
	Conflicts(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) ([]domain.Reservation, error)
}

type CustomerService interface {
	// Resolve upserts a customer by ID document. Blocked customers are
	// returned untouched so the caller's guard can reject them.
	Resolve(ctx context.Context, in domain.CustomerIntake) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByDocument(ctx context.Context, documentNumber string) (*domain.Customer, error)
}

type ReservationService interface {
	Quote(ctx context.Context, in QuoteInput) (*pricing.Breakdown, error)
	Create(ctx context.Context, actor string, in CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error)

	MarkPaid(ctx context.Context, actor string, id int64) (*domain.Reservation, error)
	Confirm(ctx context.Context, actor string, id int64) (*domain.Reservation, error)
	Cancel(ctx context.Context, actor string, id int64, reason string, withRefund bool) (*domain.Reservation, error)
	Complete(ctx context.Context, actor string, id int64, returnOdometer *int64) (*domain.Reservation, error)
	Expire(ctx context.Context, actor string, id int64) (*domain.Reservation, error)
}

type ContractService interface {
	IssueContract(ctx context.Context, actor string, reservationID int64, kind domain.ContractKind, evidence domain.ContractEvidence) (*domain.Contract, error)
	IssueWalkInContract(ctx context.Context, actor string, in WalkInContractInput) (*domain.Contract, error)
	ConvertContract(ctx context.Context, actor string, id int64, evidence domain.ContractEvidence) (*domain.Contract, error)
	GetContract(ctx context.Context, id int64) (*domain.Contract, error)
	ListByReservation(ctx context.Context, reservationID int64) ([]domain.Contract, error)
	EvidenceUploadURL(ctx context.Context, kind storage.EvidenceKind, filename string) (*UploadTicket, error)
}

type EmailService interface {
	SendContractEmail(ctx context.Context, msg ContractEmail) error
}

// QuoteInput prices a prospective reservation without persisting it
type QuoteInput struct {
	VehicleID int64
	StartAt   time.Time
	EndAt     time.Time
	Discount  pricing.Discount
}

// CreateReservationInput carries either an existing CustomerID or intake
// fields used to upsert the customer by ID document.
type CreateReservationInput struct {
	VehicleID  int64
	CustomerID int64
	Customer   *domain.CustomerIntake
	StartAt    time.Time
	EndAt      time.Time
	Discount   pricing.Discount
}

type WalkInContractInput struct {
	VehicleID  int64
	CustomerID int64
	Customer   *domain.CustomerIntake
	StartAt    time.Time
	EndAt      time.Time
	Discount   pricing.Discount
	Kind       domain.ContractKind
	Evidence   domain.ContractEvidence
}

// ContractEmail is the payload of the send-contract-email notification
type ContractEmail struct {
	ContractID     int64
	ContractNumber string
	CustomerEmail  string
	CustomerName   string
	VehiclePlate   string
	PDFURL         string
}

type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
