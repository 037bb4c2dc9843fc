package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
	"rentacar-backend/internal/service"
)

// MockReservationRepo implements only the listing queries jobs use
type MockReservationRepo struct {
	repository.ReservationRepository
	mock.Mock
}

func (m *MockReservationRepo) ListDueForExpiry(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListDueForCompletion(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// MockReservationService
type MockReservationService struct {
	service.ReservationService
	mock.Mock
}

func (m *MockReservationService) Expire(ctx context.Context, actor string, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) Complete(ctx context.Context, actor string, id int64, returnOdometer *int64) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, id, returnOdometer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
