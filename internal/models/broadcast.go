package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Broadcast is an immutable audit row recording one SMS fan-out.
type Broadcast struct {
	bun.BaseModel `bun:"table:broadcasts"`

	ID             string    `bun:"id,pk" json:"id"`
	EventID        string    `bun:"event_id,notnull" json:"eventId"`
	Message        string    `bun:"message,notnull" json:"message"`
	Channel        string    `bun:"channel,notnull,default:'sms'" json:"channel"`
	RecipientCount int       `bun:"recipient_count" json:"recipientCount"`
	SentAt         time.Time `bun:"sent_at,notnull,default:current_timestamp" json:"sentAt"`
	SentBy         string    `bun:"sent_by,notnull" json:"sentBy"`
}

type BroadcastRequest struct {
	EventID string `json:"eventId" validate:"required,uuid4"`
	Message string `json:"message" validate:"required,max=1600"`
	Channel string `json:"channel" validate:"omitempty,oneof=sms"`
}

type BroadcastResult struct {
	BroadcastID     string `json:"broadcastId"`
	TotalRecipients int    `json:"totalRecipients"`
	SuccessCount    int    `json:"successCount"`
	FailedCount     int    `json:"failedCount"`
}
