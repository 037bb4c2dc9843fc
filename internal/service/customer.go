package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Resolve(ctx context.Context, in domain.CustomerIntake) (*domain.Customer, error) {
	logger.EnterMethod("customerService.Resolve", "document", in.DocumentNumber)

	if err := in.Validate(); err != nil {
		logger.ExitMethodWithError("customerService.Resolve", err)
		return nil, err
	}
	doc := strings.TrimSpace(in.DocumentNumber)

	existing, err := s.customerRepo.GetByDocument(ctx, doc)
	switch {
	case err == nil:
		if existing.IsBlocked() {
			logger.ExitMethod("customerService.Resolve", "customerID", existing.ID, "blocked", true)
			return existing, nil
		}
		existing.FirstName = strings.TrimSpace(in.FirstName)
		existing.LastName = strings.TrimSpace(in.LastName)
		if email := strings.TrimSpace(in.Email); email != "" {
			existing.Email = email
		}
		if phone := strings.TrimSpace(in.Phone); phone != "" {
			existing.Phone = phone
		}
		if err := s.customerRepo.UpdateContact(ctx, existing); err != nil {
			logger.ExitMethodWithError("customerService.Resolve", err)
			return nil, err
		}
		logger.ExitMethod("customerService.Resolve", "customerID", existing.ID, "created", false)
		return existing, nil

	case errors.Is(err, domain.ErrNotFound):
		c := &domain.Customer{
			DocumentNumber: doc,
			FirstName:      strings.TrimSpace(in.FirstName),
			LastName:       strings.TrimSpace(in.LastName),
			Email:          strings.TrimSpace(in.Email),
			Phone:          strings.TrimSpace(in.Phone),
		}
		if err := s.customerRepo.Create(ctx, c); err != nil {
			logger.ExitMethodWithError("customerService.Resolve", err)
			return nil, err
		}
		logger.ExitMethod("customerService.Resolve", "customerID", c.ID, "created", true)
		return c, nil

	default:
		logger.ExitMethodWithError("customerService.Resolve", err)
		return nil, err
	}
}

func (s *customerService) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) GetByDocument(ctx context.Context, documentNumber string) (*domain.Customer, error) {
	doc := strings.TrimSpace(documentNumber)
	if doc == "" {
		return nil, fmt.Errorf("%w: document number is required", domain.ErrValidation)
	}
	return s.customerRepo.GetByDocument(ctx, doc)
}
