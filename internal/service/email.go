package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendReturnReceipt(ctx context.Context, email, name, rentalNumber string, totalAmount, outstandingAmount decimal.Decimal) error {
	subject := fmt.Sprintf("Return receipt for rental %s", rentalNumber)

	var balanceLine string
	switch {
	case outstandingAmount.IsPositive():
		balanceLine = fmt.Sprintf("An outstanding balance of %s remains due.", outstandingAmount.StringFixed(2))
	case outstandingAmount.IsNegative():
		balanceLine = fmt.Sprintf("A refund of %s is due to you.", outstandingAmount.Neg().StringFixed(2))
	default:
		balanceLine = "Your account is settled in full."
	}

	body := fmt.Sprintf("Hello %s,\n\nYour rental %s has been returned.\n\nFinal amount: %s\n%s\n\nThank you for your business.",
		name, rentalNumber, totalAmount.StringFixed(2), balanceLine)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, rentalNumber string, expectedReturn time.Time) error {
	subject := fmt.Sprintf("Rental %s is overdue", rentalNumber)
	body := fmt.Sprintf("Hello %s,\n\nYour rental %s was due back on %s and is now overdue.\nPlease return the equipment or contact us to extend the rental.\n\nThank you.",
		name, rentalNumber, expectedReturn.Format("2006-01-02"))
	return s.send(email, name, subject, body)
}
