package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TicketType is a purchasable tier of an event. Rows are replaced wholesale
// when an organizer saves the set, so IDs do not persist across edits;
// attendees keep a denormalized name/price snapshot instead.
type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	ID           string          `bun:"id,pk" json:"id"`
	EventID      string          `bun:"event_id,notnull" json:"eventId"`
	Name         string          `bun:"name,notnull" json:"name"`
	Description  string          `bun:"description,nullzero" json:"description,omitempty"`
	Price        decimal.Decimal `bun:"price,type:numeric" json:"price"`
	Quantity     *int            `bun:"quantity" json:"quantity,omitempty"` // nil = unlimited
	QuantitySold int             `bun:"quantity_sold,notnull,default:0" json:"quantitySold"`
	DisplayOrder int             `bun:"display_order,notnull,default:0" json:"displayOrder"`
	IsActive     bool            `bun:"is_active,notnull,default:true" json:"isActive"`
	CreatedAt    time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// SoldOut reports whether the capped quantity has been reached.
// An unlimited ticket type (nil Quantity) never sells out.
func (t *TicketType) SoldOut() bool {
	return t.Quantity != nil && t.QuantitySold >= *t.Quantity
}

type TicketTypeInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity" validate:"omitempty,min=1"`
	IsActive    bool            `json:"isActive"`
}

type ReplaceTicketTypesRequest struct {
	TicketTypes []TicketTypeInput `json:"ticketTypes" validate:"required,dive"`
}
