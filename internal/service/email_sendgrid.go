package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentacar-backend/internal/logger"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendContractEmail(ctx context.Context, msg ContractEmail) error {
	subject, plain, htmlBody := contractEmailContent(msg)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.CustomerName, msg.CustomerEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, htmlBody)

	client := sendgrid.NewSendClient(s.apiKey)

	logger.ExternalServiceCall("sendgrid", "SendContractEmail", "contract_id", msg.ContractID)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "SendContractEmail", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "SendContractEmail", err)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "SendContractEmail", nil, "status", response.StatusCode)
	return nil
}
