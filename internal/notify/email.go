package notify

import (
	"context"
	"fmt"
	"time"

	"agama-events/internal/logger"

	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
)

// ConfirmationParams holds everything needed to render a reservation
// confirmation email.
type ConfirmationParams struct {
	To            string
	Name          string
	EventTitle    string
	EventDate     time.Time
	EventLocation string
	TicketType    string
	Price         decimal.Decimal
	IsFree        bool
}

type Mailer interface {
	SendReservationConfirmation(ctx context.Context, p ConfirmationParams) error
}

// ResendMailer sends transactional email through Resend. A missing API key
// disables sending with a warning; callers treat every send as best-effort.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *logger.Logger
}

func NewResendMailer(apiKey, from string, log *logger.Logger) *ResendMailer {
	m := &ResendMailer{from: from, logger: log}
	if apiKey == "" {
		log.Warn("EMAIL", "RESEND_API_KEY not set, confirmation emails disabled")
		return m
	}
	m.client = resend.NewClient(apiKey)
	return m
}

func (m *ResendMailer) SendReservationConfirmation(ctx context.Context, p ConfirmationParams) error {
	if m.client == nil {
		m.logger.Warn("EMAIL", "skipping confirmation email for "+p.To+" (mailer disabled)")
		return nil
	}

	priceLine := "Free"
	if !p.IsFree {
		priceLine = "$" + p.Price.StringFixed(2)
	}

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>You're registered for %s</h1>
  <p>Hi %s,</p>
  <p>Your registration has been confirmed.</p>
  <table cellpadding="6">
    <tr><td><strong>Event</strong></td><td>%s</td></tr>
    <tr><td><strong>Date</strong></td><td>%s</td></tr>
    <tr><td><strong>Location</strong></td><td>%s</td></tr>
    <tr><td><strong>Ticket</strong></td><td>%s</td></tr>
    <tr><td><strong>Price</strong></td><td>%s</td></tr>
  </table>
  <p>See you there!</p>
</div>`,
		p.EventTitle, p.Name, p.EventTitle,
		p.EventDate.Format("Monday, January 2, 2006 at 3:04 PM"),
		p.EventLocation, p.TicketType, priceLine)

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{p.To},
		Subject: fmt.Sprintf("Registration Confirmed: %s", p.EventTitle),
		Html:    html,
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	m.logger.Info("EMAIL", fmt.Sprintf("confirmation sent to %s for %s", p.To, p.EventTitle))
	return nil
}
