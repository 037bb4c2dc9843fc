package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/pricing"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. Every failure is a
// domain.ErrValidation.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err)
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

// discountRequest carries at most one of the two discount forms
type discountRequest struct {
	DiscountPercent *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	DiscountAmount  *int64   `json:"discount_amount,omitempty" validate:"omitempty,gte=0"`
}

func (d discountRequest) toDiscount() (pricing.Discount, error) {
	switch {
	case d.DiscountPercent != nil && d.DiscountAmount != nil:
		return pricing.Discount{}, fmt.Errorf("%w: set either discount_percent or discount_amount, not both", domain.ErrValidation)
	case d.DiscountPercent != nil:
		return pricing.Percent(*d.DiscountPercent), nil
	case d.DiscountAmount != nil:
		return pricing.Amount(*d.DiscountAmount), nil
	}
	return pricing.NoDiscount(), nil
}

type customerIntakeRequest struct {
	DocumentNumber string `json:"document_number" validate:"required,max=32"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
}

func (c *customerIntakeRequest) toIntake() *domain.CustomerIntake {
	if c == nil {
		return nil
	}
	return &domain.CustomerIntake{
		DocumentNumber: c.DocumentNumber,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
	}
}

type quoteRequest struct {
	VehicleID int64     `json:"vehicle_id" validate:"required,gt=0"`
	StartAt   time.Time `json:"start_at" validate:"required"`
	EndAt     time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
	discountRequest
}

func (q quoteRequest) toInput() (service.QuoteInput, error) {
	d, err := q.toDiscount()
	if err != nil {
		return service.QuoteInput{}, err
	}
	return service.QuoteInput{VehicleID: q.VehicleID, StartAt: q.StartAt, EndAt: q.EndAt, Discount: d}, nil
}

type createReservationRequest struct {
	VehicleID  int64                  `json:"vehicle_id" validate:"required,gt=0"`
	CustomerID int64                  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Customer   *customerIntakeRequest `json:"customer,omitempty" validate:"required_without=CustomerID,omitempty"`
	StartAt    time.Time              `json:"start_at" validate:"required"`
	EndAt      time.Time              `json:"end_at" validate:"required,gtfield=StartAt"`
	discountRequest
}

func (c createReservationRequest) toInput() (service.CreateReservationInput, error) {
	d, err := c.toDiscount()
	if err != nil {
		return service.CreateReservationInput{}, err
	}
	return service.CreateReservationInput{
		VehicleID:  c.VehicleID,
		CustomerID: c.CustomerID,
		Customer:   c.Customer.toIntake(),
		StartAt:    c.StartAt,
		EndAt:      c.EndAt,
		Discount:   d,
	}, nil
}

type cancelRequest struct {
	Reason     string `json:"reason" validate:"required,max=500"`
	WithRefund bool   `json:"with_refund"`
}

type completeRequest struct {
	ReturnOdometer *int64 `json:"return_odometer,omitempty" validate:"omitempty,gte=0"`
}

type evidenceRequest struct {
	SignatureKey   string `json:"signature_key,omitempty" validate:"omitempty,max=255"`
	FingerprintKey string `json:"fingerprint_key,omitempty" validate:"omitempty,max=255"`
	PhotoKey       string `json:"photo_key,omitempty" validate:"omitempty,max=255"`
	DocumentKey    string `json:"document_key,omitempty" validate:"omitempty,max=255"`
}

func (e evidenceRequest) toEvidence() domain.ContractEvidence {
	return domain.ContractEvidence{
		SignatureKey:   e.SignatureKey,
		FingerprintKey: e.FingerprintKey,
		PhotoKey:       e.PhotoKey,
		DocumentKey:    e.DocumentKey,
	}
}

type issueContractRequest struct {
	Kind     string          `json:"kind" validate:"required,oneof=preliminary final"`
	Evidence evidenceRequest `json:"evidence"`
}

type walkInContractRequest struct {
	VehicleID  int64                  `json:"vehicle_id" validate:"required,gt=0"`
	CustomerID int64                  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Customer   *customerIntakeRequest `json:"customer,omitempty" validate:"required_without=CustomerID,omitempty"`
	StartAt    time.Time              `json:"start_at" validate:"required"`
	EndAt      time.Time              `json:"end_at" validate:"required,gtfield=StartAt"`
	Kind       string                 `json:"kind" validate:"required,oneof=preliminary final"`
	Evidence   evidenceRequest        `json:"evidence"`
	discountRequest
}

func (c walkInContractRequest) toInput() (service.WalkInContractInput, error) {
	d, err := c.toDiscount()
	if err != nil {
		return service.WalkInContractInput{}, err
	}
	return service.WalkInContractInput{
		VehicleID:  c.VehicleID,
		CustomerID: c.CustomerID,
		Customer:   c.Customer.toIntake(),
		StartAt:    c.StartAt,
		EndAt:      c.EndAt,
		Discount:   d,
		Kind:       domain.ContractKind(c.Kind),
		Evidence:   c.Evidence.toEvidence(),
	}, nil
}

type convertContractRequest struct {
	Evidence evidenceRequest `json:"evidence"`
}

type evidenceUploadRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=signature fingerprint photo document"`
	Filename string `json:"filename" validate:"required,max=255"`
}

func (e evidenceUploadRequest) evidenceKind() storage.EvidenceKind {
	return storage.EvidenceKind(e.Kind)
}

type listReservationsResponse struct {
	Reservations []domain.Reservation `json:"reservations"`
	Total        int32                `json:"total"`
}

type availabilityResponse struct {
	VehicleID int64                `json:"vehicle_id"`
	StartAt   time.Time            `json:"start_at"`
	EndAt     time.Time            `json:"end_at"`
	Available bool                 `json:"available"`
	Conflicts []domain.Reservation `json:"conflicts"`
}
