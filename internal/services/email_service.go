package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"ispcrm/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendDealPendingApproval(deal *models.Deal) error
}

type emailService struct {
	dialer       *gomail.Dialer
	from         string
	managerEmail string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, managerEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer:       dialer,
		from:         fromEmail,
		managerEmail: managerEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome aboard!")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your sales account has been created.</p>
		<p>You can now log in and start working your leads.</p>
	`, name)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendDealPendingApproval(deal *models.Deal) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.managerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Deal #%d is waiting for price approval", deal.ID))

	body := fmt.Sprintf(`
		<h3>Price approval requested</h3>
		<p>Deal <strong>%s</strong> (#%d) has line items priced below the standard price.</p>
		<p>Total amount: %.2f</p>
		<p>Please review it in the CRM.</p>
	`, deal.Title, deal.ID, deal.TotalAmount)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send approval email: %w", err)
	}
	return nil
}
