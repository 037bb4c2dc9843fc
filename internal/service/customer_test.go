package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentacar-backend/internal/domain"
)

func TestCustomerService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesUnknownDocument", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		svc := NewCustomerService(repo)

		repo.On("GetByDocument", mock.Anything, "1020304050").Return(nil, domain.ErrNotFound).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
			return c.DocumentNumber == "1020304050" && c.FirstName == "Ana" && c.Email == "ana@example.com"
		})).Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 3 }).Return(nil).Once()

		c, err := svc.Resolve(ctx, domain.CustomerIntake{DocumentNumber: " 1020304050 ", FirstName: " Ana", LastName: "Gomez", Email: "ana@example.com "})
		require.NoError(t, err)
		assert.Equal(t, int64(3), c.ID)
		repo.AssertExpectations(t)
	})

	t.Run("UpdatesExistingKeepsContactWhenBlank", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		svc := NewCustomerService(repo)
		existing := &domain.Customer{ID: 3, DocumentNumber: "1020304050", FirstName: "Ana", LastName: "Gomez", Email: "old@example.com", Phone: "3001234567"}

		repo.On("GetByDocument", mock.Anything, "1020304050").Return(existing, nil).Once()
		repo.On("UpdateContact", mock.Anything, existing).Return(nil).Once()

		c, err := svc.Resolve(ctx, domain.CustomerIntake{DocumentNumber: "1020304050", FirstName: "Ana Maria", LastName: "Gomez", Phone: "3109876543"})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", c.FirstName)
		assert.Equal(t, "old@example.com", c.Email)
		assert.Equal(t, "3109876543", c.Phone)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("BlockedReturnedUntouched", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		svc := NewCustomerService(repo)
		blocked := &domain.Customer{ID: 9, DocumentNumber: "555", FirstName: "Luis", LastName: "Perez", Alert: " Negativo "}

		repo.On("GetByDocument", mock.Anything, "555").Return(blocked, nil).Once()

		c, err := svc.Resolve(ctx, domain.CustomerIntake{DocumentNumber: "555", FirstName: "Other", LastName: "Name"})
		require.NoError(t, err)
		assert.True(t, c.IsBlocked())
		assert.Equal(t, "Luis", c.FirstName)
		repo.AssertNotCalled(t, "UpdateContact", mock.Anything, mock.Anything)
	})

	t.Run("InvalidIntake", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		svc := NewCustomerService(repo)

		_, err := svc.Resolve(ctx, domain.CustomerIntake{FirstName: "Ana", LastName: "Gomez"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "GetByDocument", mock.Anything, mock.Anything)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		svc := NewCustomerService(repo)
		repo.On("GetByDocument", mock.Anything, "1").Return(nil, errors.New("db down")).Once()

		_, err := svc.Resolve(ctx, domain.CustomerIntake{DocumentNumber: "1", FirstName: "A", LastName: "B"})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_GetByDocument(t *testing.T) {
	repo := new(MockCustomerRepo)
	svc := NewCustomerService(repo)

	_, err := svc.GetByDocument(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	repo.On("GetByDocument", mock.Anything, "42").Return(&domain.Customer{ID: 1}, nil).Once()
	c, err := svc.GetByDocument(context.Background(), " 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
}
