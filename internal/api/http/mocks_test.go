package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/pricing"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"
)

// MockReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Quote(ctx context.Context, in service.QuoteInput) (*pricing.Breakdown, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Breakdown), args.Error(1)
}
func (m *MockReservationService) Create(ctx context.Context, actor string, in service.CreateReservationInput) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Reservation), int32(args.Int(1)), args.Error(2)
}
func (m *MockReservationService) MarkPaid(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	return m.transition(m.Called(ctx, actor, id))
}
func (m *MockReservationService) Confirm(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	return m.transition(m.Called(ctx, actor, id))
}
func (m *MockReservationService) Cancel(ctx context.Context, actor string, id int64, reason string, withRefund bool) (*domain.Reservation, error) {
	return m.transition(m.Called(ctx, actor, id, reason, withRefund))
}
func (m *MockReservationService) Complete(ctx context.Context, actor string, id int64, returnOdometer *int64) (*domain.Reservation, error) {
	return m.transition(m.Called(ctx, actor, id, returnOdometer))
}
func (m *MockReservationService) Expire(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	return m.transition(m.Called(ctx, actor, id))
}
func (m *MockReservationService) transition(args mock.Arguments) (*domain.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

// MockContractService
type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) IssueContract(ctx context.Context, actor string, reservationID int64, kind domain.ContractKind, evidence domain.ContractEvidence) (*domain.Contract, error) {
	return m.contract(m.Called(ctx, actor, reservationID, kind, evidence))
}
func (m *MockContractService) IssueWalkInContract(ctx context.Context, actor string, in service.WalkInContractInput) (*domain.Contract, error) {
	return m.contract(m.Called(ctx, actor, in))
}
func (m *MockContractService) ConvertContract(ctx context.Context, actor string, id int64, evidence domain.ContractEvidence) (*domain.Contract, error) {
	return m.contract(m.Called(ctx, actor, id, evidence))
}
func (m *MockContractService) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	return m.contract(m.Called(ctx, id))
}
func (m *MockContractService) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Contract, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractService) EvidenceUploadURL(ctx context.Context, kind storage.EvidenceKind, filename string) (*service.UploadTicket, error) {
	args := m.Called(ctx, kind, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadTicket), args.Error(1)
}
func (m *MockContractService) contract(args mock.Arguments) (*domain.Contract, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

// MockCustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Resolve(ctx context.Context, in domain.CustomerIntake) (*domain.Customer, error) {
	return m.customer(m.Called(ctx, in))
}
func (m *MockCustomerService) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return m.customer(m.Called(ctx, id))
}
func (m *MockCustomerService) GetByDocument(ctx context.Context, documentNumber string) (*domain.Customer, error) {
	return m.customer(m.Called(ctx, documentNumber))
}
func (m *MockCustomerService) customer(args mock.Arguments) (*domain.Customer, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockAvailabilityService
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) IsAvailable(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) (bool, error) {
	args := m.Called(ctx, vehicleID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}
func (m *MockAvailabilityService) Conflicts(ctx context.Context, vehicleID int64, start, end time.Time, excludeID *int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, vehicleID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
