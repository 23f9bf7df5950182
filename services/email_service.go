package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"hohemaloans/config"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		config: cfg,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendApplicationSubmittedNotification отправляет уведомление о подаче заявки
func (s *EmailService) SendApplicationSubmittedNotification(to, reference string, amount decimal.Decimal, termMonths int) error {
	subject := "Ho Hema Loans: application received"
	body := fmt.Sprintf(`
		<h2>Your loan application has been received</h2>
		<p>Application reference: %s</p>
		<p>Amount: R %s</p>
		<p>Term: %d months</p>
		<p>Date: %s</p>
		<p>We will notify you once a decision has been made.</p>
	`, reference, amount.StringFixed(2), termMonths, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendApplicationApprovedNotification отправляет уведомление об одобрении заявки
func (s *EmailService) SendApplicationApprovedNotification(to, reference string, monthlyPayment, totalAmount decimal.Decimal, termMonths int) error {
	subject := "Ho Hema Loans: application approved"
	body := fmt.Sprintf(`
		<h2>Congratulations! Your loan application has been approved</h2>
		<p>Application reference: %s</p>
		<p>Monthly installment: R %s</p>
		<p>Total payable: R %s over %d months</p>
		<p>The funds will be disbursed to your nominated bank account.</p>
	`, reference, monthlyPayment.StringFixed(2), totalAmount.StringFixed(2), termMonths)

	return s.SendEmail(to, subject, body)
}

// SendApplicationRejectedNotification отправляет уведомление об отказе
func (s *EmailService) SendApplicationRejectedNotification(to, reference, notes string) error {
	subject := "Ho Hema Loans: application outcome"
	body := fmt.Sprintf(`
		<h2>Your loan application was not approved</h2>
		<p>Application reference: %s</p>
		<p>Reason: %s</p>
		<p>You may re-apply once your circumstances change.</p>
	`, reference, notes)

	return s.SendEmail(to, subject, body)
}

// SendPreAgreementStatement отправляет предварительное заявление об условиях
// займа (требование NCR)
func (s *EmailService) SendPreAgreementStatement(to, statementHTML string) error {
	subject := "Ho Hema Loans: pre-agreement statement"
	return s.SendEmail(to, subject, statementHTML)
}
