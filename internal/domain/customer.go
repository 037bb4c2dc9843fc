package domain

import (
	"fmt"
	"strings"
	"time"
)

// AlertNegative is the manual blocklist marker stored in customers.alerta_cliente
const AlertNegative = "negativo"

type Customer struct {
	ID             int64     `json:"id"`
	DocumentNumber string    `json:"document_number"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Alert          string    `json:"alerta_cliente"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsBlocked reports whether the customer carries the blocklist flag
func (c *Customer) IsBlocked() bool {
	return strings.EqualFold(strings.TrimSpace(c.Alert), AlertNegative)
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerIntake is the customer block of the reservation form
type CustomerIntake struct {
	DocumentNumber string `json:"document_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// Validate checks the fields needed to upsert a customer by ID document
func (in CustomerIntake) Validate() error {
	switch {
	case strings.TrimSpace(in.DocumentNumber) == "":
		return fmt.Errorf("%w: customer document number is required", ErrValidation)
	case strings.TrimSpace(in.FirstName) == "":
		return fmt.Errorf("%w: customer first name is required", ErrValidation)
	case strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("%w: customer last name is required", ErrValidation)
	}
	return nil
}
