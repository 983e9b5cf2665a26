package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/mapletax/backend/src/config"
	"github.com/username/mapletax/backend/src/logger"
)

// NewEmailService selects the email backend from configuration: mailgun,
// smtp, or a logging mock when neither is configured.
func NewEmailService() EmailService {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &SMTPEmailService{
			SMTPServer:   config.Cfg.SMTPServer,
			SMTPPort:     config.Cfg.SMTPPort,
			SMTPUser:     config.Cfg.SMTPUser,
			SMTPPassword: config.Cfg.SMTPPassword,
			SenderEmail:  config.Cfg.SenderEmail,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

func confirmationBodies(firstName, confirmationNumber string, taxYear int, refundOrOwing float64) (subject, plain string) {
	subject = fmt.Sprintf("Your %d Tax Return Has Been Submitted", taxYear)

	outcome := fmt.Sprintf("Your estimated refund is $%.2f.", refundOrOwing)
	if refundOrOwing < 0 {
		outcome = fmt.Sprintf("Your estimated balance owing is $%.2f.", -refundOrOwing)
	}

	plain = fmt.Sprintf(`Hi %s,

Your %d tax return has been submitted successfully.

Confirmation number: %s
%s

Keep this confirmation number for your records. You can check the status of
your return at any time from your account.

Thanks,
The MapleTax Team`, firstName, taxYear, confirmationNumber, outcome)
	return subject, plain
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunEmailService) SendSubmissionConfirmation(toEmail, firstName, confirmationNumber string, taxYear int, refundOrOwing float64) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject, plainTextBody := confirmationBodies(firstName, confirmationNumber, taxYear, refundOrOwing)

	message := s.mg.NewMessage(from, subject, plainTextBody, toEmail)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send confirmation email via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.L.Info("Confirmation email sent via Mailgun", "to", toEmail, "id", id)
	return nil
}

type SMTPEmailService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

func (s *SMTPEmailService) SendSubmissionConfirmation(toEmail, firstName, confirmationNumber string, taxYear int, refundOrOwing float64) error {
	subject, body := confirmationBodies(firstName, confirmationNumber, taxYear, refundOrOwing)

	header := map[string]string{
		"From":         s.SenderEmail,
		"To":           toEmail,
		"Subject":      subject,
		"MIME-version": "1.0",
		"Content-Type": "text/plain; charset=\"UTF-8\"",
	}
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.SenderEmail, []string{toEmail}, []byte(message)); err != nil {
		logger.L.Error("Failed to send confirmation email via SMTP", "error", err, "to", toEmail)
		return fmt.Errorf("failed to send confirmation email via SMTP: %w", err)
	}
	logger.L.Info("Confirmation email sent via SMTP", "to", toEmail)
	return nil
}

// MockEmailService logs instead of sending. Used in development and tests.
type MockEmailService struct{}

func (s *MockEmailService) SendSubmissionConfirmation(toEmail, firstName, confirmationNumber string, taxYear int, refundOrOwing float64) error {
	if logger.L != nil {
		logger.L.Info("MOCK EMAIL: submission confirmation",
			"to", toEmail, "firstName", firstName,
			"confirmationNumber", confirmationNumber, "taxYear", taxYear,
			"refundOrOwing", refundOrOwing)
	}
	return nil
}
