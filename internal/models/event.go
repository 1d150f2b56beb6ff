package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string          `bun:"id,pk" json:"id"`
	OrganizerID  string          `bun:"organizer_id,notnull" json:"organizerId"`
	Title        string          `bun:"title,notnull" json:"title"`
	Description  string          `bun:"description,nullzero" json:"description,omitempty"`
	Date         time.Time       `bun:"date,notnull" json:"date"`
	Price        decimal.Decimal `bun:"price,type:numeric" json:"price"`
	Location     string          `bun:"location,nullzero" json:"location,omitempty"`
	MaxAttendees int             `bun:"max_attendees,nullzero" json:"maxAttendees,omitempty"`

	// Organizer branding
	CoverImageURL    string `bun:"cover_image_url,nullzero" json:"coverImageUrl,omitempty"`
	OrganizerName    string `bun:"organizer_name,nullzero" json:"organizerName,omitempty"`
	OrganizerLogoURL string `bun:"organizer_logo_url,nullzero" json:"organizerLogoUrl,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

type CreateEventRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=5000"`
	Date         time.Time       `json:"date" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Location     string          `json:"location" validate:"max=500"`
	MaxAttendees int             `json:"maxAttendees" validate:"min=0"`

	CoverImageURL    string `json:"coverImageUrl" validate:"omitempty,url"`
	OrganizerName    string `json:"organizerName" validate:"max=200"`
	OrganizerLogoURL string `json:"organizerLogoUrl" validate:"omitempty,url"`
}
