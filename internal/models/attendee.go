package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Payment status values for an attendee. "refunded" is documented as an
// intended value but nothing assigns it yet.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees"`

	ID           string  `bun:"id,pk" json:"id"`
	EventID      string  `bun:"event_id,notnull" json:"eventId"`
	TicketTypeID *string `bun:"ticket_type_id" json:"ticketTypeId,omitempty"` // set null when the ticket type is deleted

	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,notnull" json:"email"`
	Phone string `bun:"phone,notnull" json:"phone"`

	// Snapshots taken at reservation time. Never re-read from the catalog.
	PricePaid      decimal.Decimal `bun:"price_paid,type:numeric" json:"pricePaid"`
	TicketTypeName string          `bun:"ticket_type_name,nullzero" json:"ticketTypeName,omitempty"`

	PaymentStatus     string `bun:"payment_status,notnull,default:'pending'" json:"paymentStatus"`
	ExternalOrderID   string `bun:"external_order_id,nullzero" json:"externalOrderId,omitempty"`
	ExternalPaymentID string `bun:"external_payment_id,nullzero" json:"externalPaymentId,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

type ReservationRequest struct {
	EventID      string `json:"eventId" validate:"required,uuid4"`
	TicketTypeID string `json:"ticketTypeId" validate:"omitempty,uuid4"`
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Phone        string `json:"phone" validate:"required,max=20,phone"`
}

// ReservationResponse is returned by the reservation endpoint. Free
// reservations carry a thank-you redirect; paid ones carry the hosted
// checkout URL.
type ReservationResponse struct {
	AttendeeID  string `json:"attendeeId"`
	IsFree      bool   `json:"isFree"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
}
