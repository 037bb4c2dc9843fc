package service

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/logger"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewEmailService returns the sender selected by cfg.Email.Provider
func NewEmailService(cfg *config.Config) EmailService {
	switch cfg.Email.Provider {
	case "sendgrid":
		return NewSendGridEmailService(cfg.Email.SendGridAPIKey, cfg.SMTP.From, cfg.Email.FromName)
	case "noop":
		return NewNoopEmailService()
	default:
		return NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.Email.FromName)
	}
}

func NewSMTPEmailService(host string, port int, username, password, from, fromName string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (s *emailService) SendContractEmail(ctx context.Context, msg ContractEmail) error {
	subject, plain, htmlBody := contractEmailContent(msg)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", msg.CustomerEmail, msg.CustomerName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "SendContractEmail", "contract_id", msg.ContractID)
	err := d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "SendContractEmail", err)
	if err != nil {
		return fmt.Errorf("failed to send contract email via gomail: %w", err)
	}
	return nil
}

func contractEmailContent(msg ContractEmail) (subject, plain, htmlBody string) {
	subject = fmt.Sprintf("Your rental contract %s", msg.ContractNumber)

	plain = fmt.Sprintf("Hello %s,\n\nYour rental contract %s for vehicle %s has been issued.", msg.CustomerName, msg.ContractNumber, msg.VehiclePlate)
	if msg.PDFURL != "" {
		plain += fmt.Sprintf("\n\nYou can download the signed document here:\n%s", msg.PDFURL)
	}
	plain += "\n\nThank you for renting with us."

	link := ""
	if msg.PDFURL != "" {
		link = fmt.Sprintf(`<p><a href="%s">Download your contract</a></p>`, html.EscapeString(msg.PDFURL))
	}
	htmlBody = fmt.Sprintf(`<html>
	<body>
		<h2>Rental contract %s</h2>
		<p>Hello <strong>%s</strong>,</p>
		<p>Your rental contract for vehicle <strong>%s</strong> has been issued.</p>
		%s
	</body>
</html>`, html.EscapeString(msg.ContractNumber), html.EscapeString(msg.CustomerName), html.EscapeString(msg.VehiclePlate), link)
	return subject, plain, htmlBody
}

type noopEmailService struct{}

// NewNoopEmailService logs instead of sending
func NewNoopEmailService() EmailService {
	return noopEmailService{}
}

func (noopEmailService) SendContractEmail(ctx context.Context, msg ContractEmail) error {
	logger.InfoContext(ctx, "Contract email not sent, email provider is noop", "contract_id", msg.ContractID, "to", msg.CustomerEmail)
	return nil
}
