package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentacar-backend/internal/config"
)

func TestContractEmailContent(t *testing.T) {
	subject, plain, htmlBody := contractEmailContent(ContractEmail{
		ContractNumber: "CT-1A2B3C4D",
		CustomerName:   "Ana <Gomez>",
		VehiclePlate:   "ABC123",
		PDFURL:         "https://files.example.com/doc.pdf?a=1&b=2",
	})

	assert.Equal(t, "Your rental contract CT-1A2B3C4D", subject)
	assert.Contains(t, plain, "Hello Ana <Gomez>,")
	assert.Contains(t, plain, "https://files.example.com/doc.pdf?a=1&b=2")
	assert.Contains(t, htmlBody, "Ana &lt;Gomez&gt;")
	assert.Contains(t, htmlBody, `href="https://files.example.com/doc.pdf?a=1&amp;b=2"`)
}

func TestContractEmailContent_NoLink(t *testing.T) {
	_, plain, htmlBody := contractEmailContent(ContractEmail{ContractNumber: "CT-1", CustomerName: "Ana", VehiclePlate: "ABC123"})

	assert.False(t, strings.Contains(plain, "download"))
	assert.NotContains(t, htmlBody, "<a href")
}

func TestNewEmailService(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{"noop", noopEmailService{}},
		{"smtp", &emailService{}},
		{"sendgrid", &sendGridEmailService{}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Email.Provider = tt.provider
			assert.IsType(t, tt.want, NewEmailService(cfg))
		})
	}
}

func TestNoopEmailService(t *testing.T) {
	err := NewNoopEmailService().SendContractEmail(context.Background(), ContractEmail{ContractID: 1, CustomerEmail: "a@example.com"})
	assert.NoError(t, err)
}
